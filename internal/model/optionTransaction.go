package model

import "time"

// OptionType distinguishes calls from puts.
type OptionType string

// Option contract types.
const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// OptionAction is one of the seven option transaction actions.
type OptionAction string

// Option actions. BTO/STO open positions; STC/BTC close them against the
// opposite net sign; EXPIRATION closes at zero value; ASSIGNMENT and EXERCISE
// close the option and force a linked stock trade at the strike.
const (
	BuyToOpen   OptionAction = "BTO"
	SellToOpen  OptionAction = "STO"
	SellToClose OptionAction = "STC"
	BuyToClose  OptionAction = "BTC"
	Expiration  OptionAction = "EXPIRATION"
	Assignment  OptionAction = "ASSIGNMENT"
	Exercise    OptionAction = "EXERCISE"
)

// ContractMultiplier is the number of underlying shares per option contract.
const ContractMultiplier = 100

// OptionTransaction represents a single immutable option trade. Transactions
// sharing an OCC symbol form one logical position stream; the stream's net
// signed contract count constrains which actions are legal (see the option
// ledger). Premium and FX rate are pointers because EXPIRATION, ASSIGNMENT,
// and EXERCISE carry no premium of their own.
type OptionTransaction struct {
	ID           string       `json:"id"`
	PortfolioID  string       `json:"portfolioId"`
	Underlying   string       `json:"underlying"`
	OptionSymbol string       `json:"optionSymbol"` // OCC symbol, always computed from the fields below
	OptionType   OptionType   `json:"optionType"`
	Strike       float64      `json:"strike"`
	Expiration   time.Time    `json:"expiration"`
	Action       OptionAction `json:"action"`
	Contracts    int          `json:"contracts"`
	Premium      *float64     `json:"premiumPerContract,omitempty"` // per share of underlying, native currency
	Currency     string       `json:"currency"`
	FxRateToBase *float64     `json:"fxRateToBase,omitempty"` // locked at creation
	Fees         float64      `json:"fees"`
	// ConsumedLotID names the stock lot sold by a short-call assignment or a
	// long-put exercise. Share-buying actions (short-put assignment, long-call
	// exercise) create a new lot instead and leave this empty.
	ConsumedLotID string `json:"consumedLotId,omitempty"`
	// LinkedStockTransactionID points at the stock leg recorded atomically with
	// an ASSIGNMENT or EXERCISE. Empty for all other actions.
	LinkedStockTransactionID string    `json:"linkedStockTransactionId,omitempty"`
	Date                     time.Time `json:"date"`
	Notes                    string    `json:"notes,omitempty"`
	CreatedAt                time.Time `json:"createdAt,omitempty"`
}

// IsOpening reports whether the action opens contracts (BTO, STO).
func (a OptionAction) IsOpening() bool {
	return a == BuyToOpen || a == SellToOpen
}

// IsClosing reports whether the action closes contracts.
func (a OptionAction) IsClosing() bool {
	switch a {
	case SellToClose, BuyToClose, Expiration, Assignment, Exercise:
		return true
	}
	return false
}

// RequiresPremium reports whether the action must carry a premium.
// EXPIRATION closes at zero value; ASSIGNMENT and EXERCISE settle through the
// linked stock leg, so none of the three needs one.
func (a OptionAction) RequiresPremium() bool {
	switch a {
	case Expiration, Assignment, Exercise:
		return false
	}
	return true
}

// PremiumValue returns the per-contract premium, or 0 when absent.
func (t OptionTransaction) PremiumValue() float64 {
	if t.Premium == nil {
		return 0
	}
	return *t.Premium
}

// FxRateValue returns the locked FX rate, defaulting to 1 when absent.
func (t OptionTransaction) FxRateValue() float64 {
	if t.FxRateToBase == nil || *t.FxRateToBase == 0 {
		return 1
	}
	return *t.FxRateToBase
}

// TotalPremium returns the premium cash flow in the native currency:
// premium x contracts x 100.
func (t OptionTransaction) TotalPremium() float64 {
	return t.PremiumValue() * float64(t.Contracts) * ContractMultiplier
}
