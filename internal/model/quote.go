package model

import "time"

// Quote is the cached live price of a stock, refreshed from the market data
// provider on a schedule. Change is the absolute move against the previous
// close in the quote currency.
type Quote struct {
	Ticker    string    `json:"ticker"`
	Price     float64   `json:"price"`
	Change    float64   `json:"change"`
	Currency  string    `json:"currency"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OptionQuote is the cached live price of one option contract, keyed by its
// OCC symbol.
type OptionQuote struct {
	OptionSymbol string    `json:"optionSymbol"`
	Price        float64   `json:"price"`
	Bid          float64   `json:"bid"`
	Ask          float64   `json:"ask"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ExchangeRate is one cached currency-to-base rate.
type ExchangeRate struct {
	Currency  string    `json:"currency"`
	Rate      float64   `json:"rate"` // multiply a native amount by this to get base
	UpdatedAt time.Time `json:"updatedAt"`
}
