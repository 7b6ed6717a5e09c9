package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrSymbolNotFound indicates the provider returned no data for a symbol.
var ErrSymbolNotFound = errors.New("symbol not found")

// Client is the market-data interface consumed by the service layer.
// FinanceClient is the production implementation; tests substitute a stub so
// no network traffic is needed.
type Client interface {
	GetLatestQuote(ctx context.Context, symbol string) (LatestQuote, error)
	GetFxRate(ctx context.Context, fromCurrency, toCurrency string) (float64, error)
}

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// It wraps an HTTP client and provides convenient methods for querying stock
// prices and currency pairs.
type FinanceClient struct {
	httpClient *http.Client
}

// NewFinanceClient creates a new Yahoo Finance client with default HTTP settings.
func NewFinanceClient() *FinanceClient {
	return &FinanceClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// GetLatestQuote fetches the last 5 days of daily data for a symbol and
// returns the most recent close, with the change against the prior close
// when one is available.
func (c *FinanceClient) GetLatestQuote(ctx context.Context, symbol string) (LatestQuote, error) {
	response, err := c.queryFiveDaySymbol(ctx, symbol)
	if err != nil {
		return LatestQuote{}, err
	}

	chart, err := ParseChart(response)
	if err != nil {
		return LatestQuote{}, fmt.Errorf("symbol %s: %w", symbol, err)
	}

	last := chart.Indicators[len(chart.Indicators)-1]
	quote := LatestQuote{
		Symbol:   chart.Symbol,
		Price:    last.PriceClose,
		Currency: chart.Currency,
		Date:     last.Date,
	}
	if len(chart.Indicators) > 1 {
		quote.Change = last.PriceClose - chart.Indicators[len(chart.Indicators)-2].PriceClose
	}
	return quote, nil
}

// GetFxRate fetches the current exchange rate for a currency pair using
// Yahoo's "USDCZK=X" pair symbols.
func (c *FinanceClient) GetFxRate(ctx context.Context, fromCurrency, toCurrency string) (float64, error) {
	pair := fmt.Sprintf("%s%s=X", fromCurrency, toCurrency)
	quote, err := c.GetLatestQuote(ctx, pair)
	if err != nil {
		return 0, err
	}
	if quote.Price <= 0 {
		return 0, fmt.Errorf("no rate returned for pair %s", pair)
	}
	return quote.Price, nil
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
// It validates that timestamps and close prices are present and aligned.
func ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, ErrSymbolNotFound
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return PriceChart{}, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}
	if len(result.Indicators.Quote[0].Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	indicators := make([]Indicators, len(result.Timestamp))
	for i, v := range result.Timestamp {
		indicators[i].Date = time.Unix(v, 0).UTC()
		indicators[i].PriceOpen = result.Indicators.Quote[0].Open[i]
		indicators[i].PriceClose = result.Indicators.Quote[0].Close[i]
		indicators[i].Volume = result.Indicators.Quote[0].Volume[i]
		indicators[i].PriceHigh = result.Indicators.Quote[0].High[i]
		indicators[i].PriceLow = result.Indicators.Quote[0].Low[i]
	}

	return PriceChart{
		Symbol:           result.Meta.Symbol,
		Currency:         result.Meta.Currency,
		ExchangeName:     result.Meta.ExchangeName,
		FullExchangeName: result.Meta.FullExchangeName,
		LongName:         result.Meta.LongName,
		Shortname:        result.Meta.Shortname,
		Indicators:       indicators,
	}, nil
}

// queryFiveDaySymbol fetches the last 5 days of daily price data for a symbol.
// The range-based query (range=5d) automatically selects the most recent
// trading days, which keeps the latest-close lookup robust over weekends.
func (c *FinanceClient) queryFiveDaySymbol(ctx context.Context, symbol string) (Response, error) {
	url := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1d&range=5d", symbol)
	return c.queryYahoo(ctx, url)
}

// queryYahoo executes an HTTP request against the Yahoo Finance API. It sets
// a browser-like User-Agent (Yahoo blocks default Go clients) and surfaces
// any error field the API returns.
func (c *FinanceClient) queryYahoo(ctx context.Context, url string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		return Response{}, err
	}

	if response.Chart.Error != nil {
		return Response{}, fmt.Errorf("yahoo API error: %s", *response.Chart.Error)
	}

	return response, nil
}
