package model

import "time"

// OpenLot is the remaining unsold quantity of a single BUY transaction. Lots
// are the cost-basis unit: every linked SELL (and every share-selling
// assignment or exercise) names the lot it depletes. Lots are derived from the
// transaction log on every query and never stored.
//
// An exhausted lot (RemainingShares == 0) stays in the derived set for audit
// but contributes nothing to holdings.
type OpenLot struct {
	LotID           string    `json:"lotId"` // ID of the originating BUY transaction
	PortfolioID     string    `json:"portfolioId"`
	Ticker          string    `json:"ticker"`
	OriginalShares  float64   `json:"originalShares"`
	RemainingShares float64   `json:"remainingShares"`
	CostPerShare    float64   `json:"costPerShare"` // native currency
	Currency        string    `json:"currency"`
	FxRateToBase    float64   `json:"fxRateToBase"` // the BUY's locked rate
	PurchaseDate    time.Time `json:"purchaseDate"`
}

// RemainingCostBase returns the cost basis of the unsold shares in the base
// currency at the lot's own locked rate.
func (l OpenLot) RemainingCostBase() float64 {
	rate := l.FxRateToBase
	if rate == 0 {
		rate = 1
	}
	return l.RemainingShares * l.CostPerShare * rate
}
