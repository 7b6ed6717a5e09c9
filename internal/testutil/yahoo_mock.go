package testutil

import (
	"context"
	"time"

	"github.com/deepstock/deepstock-backend/internal/yahoo"
)

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// It returns predefined test data instead of making actual API calls.
type MockYahooClient struct {
	// Quotes maps symbols to the quote returned by GetLatestQuote.
	Quotes map[string]yahoo.LatestQuote
	// FxRates maps "FROMTO" currency pairs to the rate returned by GetFxRate.
	FxRates map[string]float64
	// MockError is the error to return from all methods when set.
	MockError error
	// QueryCount tracks how many calls were made.
	QueryCount int
}

// NewMockYahooClient creates a mock client with a small set of default
// quotes and rates.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		Quotes: map[string]yahoo.LatestQuote{
			"AAPL": {Symbol: "AAPL", Price: 150, Change: 1.5, Currency: "USD", Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)},
			"MSFT": {Symbol: "MSFT", Price: 400, Change: -2, Currency: "USD", Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)},
		},
		FxRates: map[string]float64{
			"USDCZK": 23.2,
			"EURCZK": 24.8,
			"GBPCZK": 29.1,
			"CHFCZK": 26.0,
			"EURUSD": 1.08,
		},
	}
}

// GetLatestQuote returns the configured quote for the symbol.
func (m *MockYahooClient) GetLatestQuote(_ context.Context, symbol string) (yahoo.LatestQuote, error) {
	m.QueryCount++
	if m.MockError != nil {
		return yahoo.LatestQuote{}, m.MockError
	}
	quote, ok := m.Quotes[symbol]
	if !ok {
		return yahoo.LatestQuote{}, yahoo.ErrSymbolNotFound
	}
	return quote, nil
}

// GetFxRate returns the configured rate for the currency pair.
func (m *MockYahooClient) GetFxRate(_ context.Context, fromCurrency, toCurrency string) (float64, error) {
	m.QueryCount++
	if m.MockError != nil {
		return 0, m.MockError
	}
	rate, ok := m.FxRates[fromCurrency+toCurrency]
	if !ok {
		return 0, yahoo.ErrSymbolNotFound
	}
	return rate, nil
}
