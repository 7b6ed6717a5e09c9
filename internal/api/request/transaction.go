package request

// CreateStockTransactionRequest is the request body for recording a stock trade.
type CreateStockTransactionRequest struct {
	PortfolioID   string  `json:"portfolioId"`
	Ticker        string  `json:"ticker"`
	Type          string  `json:"type"` // BUY or SELL
	Shares        float64 `json:"shares"`
	PricePerShare float64 `json:"pricePerShare"`
	Currency      string  `json:"currency"`
	FxRateToBase  float64 `json:"fxRateToBase,omitempty"` // 0 locks the current live rate
	Fees          float64 `json:"fees,omitempty"`
	SourceLotID   string  `json:"sourceLotId,omitempty"` // SELL only: the lot this sale depletes
	Date          string  `json:"date"`                  // YYYY-MM-DD
	Notes         string  `json:"notes,omitempty"`
}

// CreateOptionTransactionRequest is the request body for recording an option trade.
// The OCC symbol is derived server-side from underlying, expiration, type, and strike.
type CreateOptionTransactionRequest struct {
	PortfolioID  string   `json:"portfolioId"`
	Underlying   string   `json:"underlying"`
	OptionType   string   `json:"optionType"` // call or put
	Strike       float64  `json:"strike"`
	Expiration   string   `json:"expiration"` // YYYY-MM-DD
	Action       string   `json:"action"`     // BTO, STO, STC, BTC, EXPIRATION, ASSIGNMENT, EXERCISE
	Contracts    int      `json:"contracts"`
	Premium      *float64 `json:"premiumPerContract,omitempty"`
	Currency     string   `json:"currency"`
	FxRateToBase *float64 `json:"fxRateToBase,omitempty"`
	Fees         float64  `json:"fees,omitempty"`
	// ConsumedLotID selects the stock lot sold by a short-call ASSIGNMENT or
	// long-put EXERCISE. Lot selection is explicit, never automatic.
	ConsumedLotID string `json:"consumedLotId,omitempty"`
	Date          string `json:"date"` // YYYY-MM-DD
	Notes         string `json:"notes,omitempty"`
}

// UpdateStockTransactionRequest carries the correctable fields of a recorded
// stock transaction. Identity fields (ticker, type, lot linkage) are fixed;
// correcting those means deleting and re-recording.
type UpdateStockTransactionRequest struct {
	Shares        *float64 `json:"shares,omitempty"`
	PricePerShare *float64 `json:"pricePerShare,omitempty"`
	Fees          *float64 `json:"fees,omitempty"`
	FxRateToBase  *float64 `json:"fxRateToBase,omitempty"`
	Date          *string  `json:"date,omitempty"` // YYYY-MM-DD
	Notes         *string  `json:"notes,omitempty"`
}

// UpdateOptionTransactionRequest carries the correctable fields of a recorded
// option transaction. Contract identity (symbol, action, linkage) is fixed.
type UpdateOptionTransactionRequest struct {
	Contracts    *int     `json:"contracts,omitempty"`
	Premium      *float64 `json:"premiumPerContract,omitempty"`
	Fees         *float64 `json:"fees,omitempty"`
	FxRateToBase *float64 `json:"fxRateToBase,omitempty"`
	Date         *string  `json:"date,omitempty"` // YYYY-MM-DD
	Notes        *string  `json:"notes,omitempty"`
}

// ClosePositionRequest is the request body for closing an open option
// position in one step. The closing action (STC or BTC) is derived from the
// position's current side.
type ClosePositionRequest struct {
	Premium      float64  `json:"premiumPerContract"`
	Contracts    int      `json:"contracts,omitempty"` // 0 closes the full position
	FxRateToBase *float64 `json:"fxRateToBase,omitempty"`
	Fees         float64  `json:"fees,omitempty"`
	Date         string   `json:"date"` // YYYY-MM-DD
	Notes        string   `json:"notes,omitempty"`
}
