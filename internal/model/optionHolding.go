package model

import "time"

// PositionSide is the sign of a position's net contract count.
type PositionSide string

// Position sides.
const (
	Long  PositionSide = "long"
	Short PositionSide = "short"
)

// Moneyness of an option relative to the live underlying price. The
// classification is binary (ITM/OTM) unless the caller supplies a tolerance,
// in which case prices within the tolerance of the strike report ATM.
type Moneyness string

// Moneyness values.
const (
	InTheMoney  Moneyness = "ITM"
	OutTheMoney Moneyness = "OTM"
	AtTheMoney  Moneyness = "ATM"
)

// OptionHolding is the derived open position for one OCC symbol stream.
// AvgPremiumPerContract is the contracts-weighted mean of opening premiums
// only; closes are netted against it, never blended into it.
type OptionHolding struct {
	PortfolioID           string       `json:"portfolioId"`
	OptionSymbol          string       `json:"optionSymbol"`
	Underlying            string       `json:"underlying"`
	OptionType            OptionType   `json:"optionType"`
	Strike                float64      `json:"strike"`
	Expiration            time.Time    `json:"expiration"`
	Position              PositionSide `json:"position"`
	OpenContracts         int          `json:"openContracts"`
	AvgPremiumPerContract float64      `json:"avgPremiumPerContract"` // native currency
	Currency              string       `json:"currency"`
	TotalFeesPaid         float64      `json:"totalFeesPaid"`
	FirstTransactionDate  time.Time    `json:"firstTransactionDate"`
	LastTransactionDate   time.Time    `json:"lastTransactionDate"`
}

// OptionHoldingMetrics is an OptionHolding enriched with live-market metrics.
type OptionHoldingMetrics struct {
	OptionHolding
	UnderlyingPrice float64   `json:"underlyingPrice"`
	Moneyness       Moneyness `json:"moneyness"`
	Breakeven       float64   `json:"breakeven"`
	// BufferPercent is the signed distance from breakeven to the live
	// underlying price as a percentage of the underlying price, sign-flipped
	// for short positions so that positive always means currently safe.
	BufferPercent float64 `json:"bufferPercent"`
}

// RealizedOptionLeg is the realized outcome of one closing option
// transaction, valued at the leg's own locked rate.
type RealizedOptionLeg struct {
	TransactionID    string       `json:"transactionId"`
	OptionSymbol     string       `json:"optionSymbol"`
	PortfolioID      string       `json:"portfolioId"`
	Action           OptionAction `json:"action"`
	Contracts        int          `json:"contracts"`
	RealizedGainLoss float64      `json:"realizedGainLoss"` // base currency, net of fees
	Date             time.Time    `json:"date"`
}

// OptionStats summarizes the open option positions of a portfolio.
type OptionStats struct {
	TotalPositions   int `json:"totalPositions"`
	LongPositions    int `json:"longPositions"`
	ShortPositions   int `json:"shortPositions"`
	Calls            int `json:"calls"`
	Puts             int `json:"puts"`
	ExpiringThisWeek int `json:"expiringThisWeek"`
	ITMCount         int `json:"itmCount"`
	OTMCount         int `json:"otmCount"`
}
