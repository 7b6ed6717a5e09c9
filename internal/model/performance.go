package model

import "time"

// DateRange is an inclusive date interval used to bound performance queries.
// A zero Start means "from the first transaction"; a zero End means "through
// today".
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the date falls inside the range, inclusive on both
// ends. Zero bounds are open.
func (r DateRange) Contains(date time.Time) bool {
	if !r.Start.IsZero() && date.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && date.After(r.End) {
		return false
	}
	return true
}

// StockPerformance aggregates realized stock results over a date range. All
// monetary figures are in the base currency at each transaction's locked
// rate. Realized trades are exactly the linked SELLs; unlinked SELLs
// contribute to cash-flow totals only.
type StockPerformance struct {
	TotalBuysBase    float64              `json:"totalBuysBase"`
	TotalSellsBase   float64              `json:"totalSellsBase"`
	TotalFeesBase    float64              `json:"totalFeesBase"`
	NetCashFlowBase  float64              `json:"netCashFlowBase"` // sells - buys - fees
	RealizedGainLoss float64              `json:"realizedGainLoss"`
	TradeCount       int                  `json:"tradeCount"`
	WinningTrades    int                  `json:"winningTrades"`
	WinRate          float64              `json:"winRate"` // percent, 0 when no trades
	AverageTrade     float64              `json:"averageTrade"`
	BestTrade        float64              `json:"bestTrade"`
	WorstTrade       float64              `json:"worstTrade"`
	Trades           []RealizedStockTrade `json:"trades"`
}

// OptionPerformanceBucket tracks premium flows for one side of the
// open/closed partition.
type OptionPerformanceBucket struct {
	PremiumReceivedBase float64 `json:"premiumReceivedBase"`
	PremiumPaidBase     float64 `json:"premiumPaidBase"`
	FeesBase            float64 `json:"feesBase"`
	NetBase             float64 `json:"netBase"` // received - paid - fees
	Transactions        int     `json:"transactions"`
}

// OptionPerformance partitions a date-bounded option transaction slice into
// opening (BTO, STO) and closing buckets. It is re-derived from the same
// transactions as the option ledger, never from the ledger's live state.
type OptionPerformance struct {
	Open             OptionPerformanceBucket `json:"open"`
	Closed           OptionPerformanceBucket `json:"closed"`
	RealizedGainLoss float64                 `json:"realizedGainLoss"` // sum of closing legs, base currency
	Legs             []RealizedOptionLeg     `json:"legs"`
}

// PerformancePoint is one day of a cumulative performance series.
type PerformancePoint struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Value    float64 `json:"value"`
	Invested float64 `json:"invested"`
}

// PerformanceSeries is a date-ordered cumulative series with summary returns.
type PerformanceSeries struct {
	Data           []PerformancePoint `json:"data"`
	TotalReturn    float64            `json:"totalReturn"`
	TotalReturnPct float64            `json:"totalReturnPct"`
}
