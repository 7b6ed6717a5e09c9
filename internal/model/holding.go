package model

import "time"

// Holding is the per-ticker aggregate of all non-exhausted lots in a
// portfolio. TotalInvestedBase sums each lot's cost at that lot's own locked
// rate, never a blended current rate.
type Holding struct {
	PortfolioID         string  `json:"portfolioId"`
	Ticker              string  `json:"ticker"`
	TotalShares         float64 `json:"totalShares"`
	AverageCostPerShare float64 `json:"averageCostPerShare"` // native currency, lot-weighted
	Currency            string  `json:"currency"`
	TotalInvestedBase   float64 `json:"totalInvestedBase"`
	OpenLots            int     `json:"openLots"`
}

// HoldingValuation is a Holding enriched with live-market figures. Market
// value uses the live price and live FX rate; the invested side keeps the
// locked historical rates, so UnrealizedGainLoss mixes the two.
type HoldingValuation struct {
	Holding
	LastPrice          float64 `json:"lastPrice"` // native currency
	PriceChange        float64 `json:"priceChange"`
	MarketValueBase    float64 `json:"marketValueBase"`
	UnrealizedGainLoss float64 `json:"unrealizedGainLoss"` // base currency
	UnrealizedPct      float64 `json:"unrealizedPct"`
	RateFallback       bool    `json:"rateFallback,omitempty"` // true when the live FX table lacked the currency
}

// RealizedStockTrade is the realized outcome of one linked SELL. Proceeds use
// the SELL's locked rate and the cost basis uses the depleted lot's locked
// rate; each leg's cash flow is valued at its own historical rate.
type RealizedStockTrade struct {
	TransactionID    string    `json:"transactionId"`
	LotID            string    `json:"lotId"`
	PortfolioID      string    `json:"portfolioId"`
	Ticker           string    `json:"ticker"`
	SharesSold       float64   `json:"sharesSold"`
	SaleProceedsBase float64   `json:"saleProceedsBase"`
	CostBasisBase    float64   `json:"costBasisBase"`
	RealizedGainLoss float64   `json:"realizedGainLoss"` // proceeds - cost basis, base currency
	Date             time.Time `json:"date"`
}
