package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrTransactionNotFound indicates that a stock transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrOptionTransactionNotFound indicates that an option transaction with the given ID does not exist.
	ErrOptionTransactionNotFound = errors.New("option transaction not found")

	// ErrLotNotFound indicates that a referenced source lot does not exist in the
	// folded ledger (the ID does not name a BUY of the same ticker and portfolio).
	ErrLotNotFound = errors.New("source lot not found")

	// ErrOptionPositionNotFound indicates no open position exists for an OCC symbol.
	ErrOptionPositionNotFound = errors.New("no open option position for symbol")

	// ErrExchangeRateNotFound indicates no cached rate for a currency.
	ErrExchangeRateNotFound = errors.New("exchange rate not found")

	// ErrSettingNotFound indicates that a settings key has not been stored.
	ErrSettingNotFound = errors.New("setting not found")
)

// Business logic errors represent validation failures or ledger constraint
// violations. These errors indicate that an operation cannot be completed due
// to business rules. They are returned as values so the presentation layer can
// render them inline; none of them is used as control flow.
var (
	// ErrInsufficientLotShares indicates that a sell, assignment, or exercise
	// requests more shares than the referenced lot has remaining. The check is
	// always made against the latest fold of the transaction log, never a
	// cached snapshot.
	ErrInsufficientLotShares = errors.New("insufficient remaining shares in lot")

	// ErrInvalidPositionTransition indicates that an option action is illegal
	// for the position's current net-contract sign (e.g., ASSIGNMENT on a long
	// position, or closing more contracts than are open).
	ErrInvalidPositionTransition = errors.New("invalid option position transition")

	// ErrMalformedOccSymbol indicates that an OCC option symbol could not be decoded.
	ErrMalformedOccSymbol = errors.New("malformed OCC symbol")

	// ErrPremiumRequired indicates that a premium is missing on an action that
	// requires one (BTO, STO, STC, BTC).
	ErrPremiumRequired = errors.New("premium is required for this action")

	// ErrLotSelectionRequired indicates that an action sells shares and must
	// name the lot it depletes (short-call assignment, long-put exercise).
	ErrLotSelectionRequired = errors.New("lot selection is required for this action")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// Validation errors for required fields
	ErrInvalidPortfolioID   = errors.New("portfolio ID is required")
	ErrInvalidTicker        = errors.New("ticker is required")
	ErrInvalidTransactionID = errors.New("transaction ID is required")
	ErrInvalidCurrency      = errors.New("currency parameter is required")
	ErrInvalidDate          = errors.New("date parameter is required")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These errors indicate that an operation failed, but not due
// to missing entities or validation issues.
var (
	// Portfolio operation errors
	ErrFailedToRetrievePortfolios = errors.New("failed to retrieve portfolios")
	ErrFailedToRetrieveHoldings   = errors.New("failed to retrieve holdings")
	ErrFailedToRetrieveLots       = errors.New("failed to retrieve open lots")

	// Transaction operation errors
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveTransaction  = errors.New("failed to retrieve transaction")
	ErrFailedToCreateTransaction    = errors.New("failed to create transaction")
	ErrFailedToUpdateTransaction    = errors.New("failed to update transaction")
	ErrFailedToDeleteTransaction    = errors.New("failed to delete transaction")

	// Option operation errors
	ErrFailedToRetrieveOptionHoldings = errors.New("failed to retrieve option holdings")
	ErrFailedToRetrieveOptionStats    = errors.New("failed to retrieve option statistics")

	// Performance operation errors
	ErrFailedToComputePerformance = errors.New("failed to compute performance")

	// Market data operation errors
	ErrFailedToRetrieveQuotes = errors.New("failed to retrieve quotes")
	ErrFailedToRetrieveRates  = errors.New("failed to retrieve exchange rates")
	ErrFailedToRefreshMarket  = errors.New("failed to refresh market data")

	// System operation errors
	ErrFailedToGetVersionInfo = errors.New("failed to get version information")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrDataInconsistency indicates that the data is in an inconsistent state
	// (e.g., an option transaction links a stock leg that does not exist).
	ErrDataInconsistency = errors.New("data inconsistency detected")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)
