package model

import "time"

// StockTransactionType is the kind of a stock transaction.
type StockTransactionType string

// Stock transaction kinds. The transaction log is append-only; all holdings,
// lots, and realized figures are re-derived from it on demand.
const (
	StockBuy  StockTransactionType = "BUY"
	StockSell StockTransactionType = "SELL"
)

// StockTransaction represents a single immutable stock trade in a portfolio.
// The FX rate to the base currency is locked at creation so that realized
// figures never change once computed; live rates are only used for current
// valuation.
type StockTransaction struct {
	ID            string               `json:"id"`
	PortfolioID   string               `json:"portfolioId"`
	Ticker        string               `json:"ticker"`
	Type          StockTransactionType `json:"type"`
	Shares        float64              `json:"shares"`
	PricePerShare float64              `json:"pricePerShare"` // native currency
	Currency      string               `json:"currency"`
	FxRateToBase  float64              `json:"fxRateToBase"` // locked at creation
	Fees          float64              `json:"fees"`
	SourceLotID   string               `json:"sourceLotId,omitempty"` // SELL only: the BUY this sale depletes
	Date          time.Time            `json:"date"`
	Notes         string               `json:"notes,omitempty"`
	CreatedAt     time.Time            `json:"createdAt,omitempty"`
}

// TotalAmount returns shares x price per share in the native currency,
// excluding fees.
func (t StockTransaction) TotalAmount() float64 {
	return t.Shares * t.PricePerShare
}

// TotalAmountBase returns the transaction amount in the base currency at the
// transaction's own locked rate. A zero rate is treated as 1 (legacy rows
// recorded before FX locking).
func (t StockTransaction) TotalAmountBase() float64 {
	rate := t.FxRateToBase
	if rate == 0 {
		rate = 1
	}
	return t.TotalAmount() * rate
}
