package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/deepstock/deepstock-backend/internal/model"
	"github.com/deepstock/deepstock-backend/internal/occ"
	"github.com/deepstock/deepstock-backend/internal/repository"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    WithCurrency("USD").
//	    Build(t, db)
type PortfolioBuilder struct {
	ID          string
	Name        string
	Description string
	Currency    string
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:          MakeID(),
		Name:        MakePortfolioName("Test Portfolio"),
		Description: "Test description",
		Currency:    "CZK",
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithCurrency sets the base currency.
func (b *PortfolioBuilder) WithCurrency(currency string) *PortfolioBuilder {
	b.Currency = currency
	return b
}

// Build inserts the portfolio into the test database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	portfolio := model.Portfolio{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Currency:    b.Currency,
		CreatedAt:   time.Now().UTC(),
	}

	if err := repository.NewPortfolioRepository(db).Create(&portfolio); err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}
	return portfolio
}

// StockTransactionBuilder provides a fluent interface for inserting stock
// transactions directly, bypassing service-level validation. Use it to set
// up ledger state for derivation tests.
type StockTransactionBuilder struct {
	tx model.StockTransaction
}

// NewStockTransaction creates a builder for a BUY of 10 shares at 100.
func NewStockTransaction(portfolioID string) *StockTransactionBuilder {
	return &StockTransactionBuilder{
		tx: model.StockTransaction{
			ID:            MakeID(),
			PortfolioID:   portfolioID,
			Ticker:        "AAPL",
			Type:          model.StockBuy,
			Shares:        10,
			PricePerShare: 100,
			Currency:      "USD",
			FxRateToBase:  1,
			Date:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			CreatedAt:     time.Now().UTC(),
		},
	}
}

// WithID sets a custom ID.
func (b *StockTransactionBuilder) WithID(id string) *StockTransactionBuilder {
	b.tx.ID = id
	return b
}

// WithTicker sets the ticker.
func (b *StockTransactionBuilder) WithTicker(ticker string) *StockTransactionBuilder {
	b.tx.Ticker = ticker
	return b
}

// Sell turns the transaction into a SELL drawing from the given lot.
func (b *StockTransactionBuilder) Sell(sourceLotID string) *StockTransactionBuilder {
	b.tx.Type = model.StockSell
	b.tx.SourceLotID = sourceLotID
	return b
}

// WithShares sets the share count.
func (b *StockTransactionBuilder) WithShares(shares float64) *StockTransactionBuilder {
	b.tx.Shares = shares
	return b
}

// WithPrice sets the per-share price.
func (b *StockTransactionBuilder) WithPrice(price float64) *StockTransactionBuilder {
	b.tx.PricePerShare = price
	return b
}

// WithFxRate sets the locked FX rate to base.
func (b *StockTransactionBuilder) WithFxRate(rate float64) *StockTransactionBuilder {
	b.tx.FxRateToBase = rate
	return b
}

// WithFees sets the transaction fees.
func (b *StockTransactionBuilder) WithFees(fees float64) *StockTransactionBuilder {
	b.tx.Fees = fees
	return b
}

// WithDate sets the transaction date.
func (b *StockTransactionBuilder) WithDate(date time.Time) *StockTransactionBuilder {
	b.tx.Date = date
	return b
}

// Build inserts the transaction into the test database and returns it.
func (b *StockTransactionBuilder) Build(t *testing.T, db *sql.DB) model.StockTransaction {
	t.Helper()

	if err := repository.NewStockTransactionRepository(db).Insert(db, &b.tx); err != nil {
		t.Fatalf("Failed to create test stock transaction: %v", err)
	}
	return b.tx
}

// OptionTransactionBuilder provides a fluent interface for inserting option
// transactions directly, bypassing service-level validation.
type OptionTransactionBuilder struct {
	tx model.OptionTransaction
}

// NewOptionTransaction creates a builder for an STO of 1 AAPL call.
func NewOptionTransaction(portfolioID string) *OptionTransactionBuilder {
	premium := 3.0
	fx := 1.0
	return &OptionTransactionBuilder{
		tx: model.OptionTransaction{
			ID:           MakeID(),
			PortfolioID:  portfolioID,
			Underlying:   "AAPL",
			OptionType:   model.Call,
			Strike:       150,
			Expiration:   time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC),
			Action:       model.SellToOpen,
			Contracts:    1,
			Premium:      &premium,
			Currency:     "USD",
			FxRateToBase: &fx,
			Date:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			CreatedAt:    time.Now().UTC(),
		},
	}
}

// WithUnderlying sets the underlying ticker.
func (b *OptionTransactionBuilder) WithUnderlying(ticker string) *OptionTransactionBuilder {
	b.tx.Underlying = ticker
	return b
}

// WithAction sets the option action.
func (b *OptionTransactionBuilder) WithAction(action model.OptionAction) *OptionTransactionBuilder {
	b.tx.Action = action
	return b
}

// WithType sets call or put.
func (b *OptionTransactionBuilder) WithType(optionType model.OptionType) *OptionTransactionBuilder {
	b.tx.OptionType = optionType
	return b
}

// WithStrike sets the strike price.
func (b *OptionTransactionBuilder) WithStrike(strike float64) *OptionTransactionBuilder {
	b.tx.Strike = strike
	return b
}

// WithExpiration sets the expiration date.
func (b *OptionTransactionBuilder) WithExpiration(expiration time.Time) *OptionTransactionBuilder {
	b.tx.Expiration = expiration
	return b
}

// WithContracts sets the contract count.
func (b *OptionTransactionBuilder) WithContracts(contracts int) *OptionTransactionBuilder {
	b.tx.Contracts = contracts
	return b
}

// WithPremium sets the per-share premium.
func (b *OptionTransactionBuilder) WithPremium(premium float64) *OptionTransactionBuilder {
	b.tx.Premium = &premium
	return b
}

// NoPremium clears the premium, as on EXPIRATION, ASSIGNMENT, and EXERCISE.
func (b *OptionTransactionBuilder) NoPremium() *OptionTransactionBuilder {
	b.tx.Premium = nil
	return b
}

// WithFees sets the transaction fees.
func (b *OptionTransactionBuilder) WithFees(fees float64) *OptionTransactionBuilder {
	b.tx.Fees = fees
	return b
}

// WithFxRate sets the locked FX rate to base.
func (b *OptionTransactionBuilder) WithFxRate(rate float64) *OptionTransactionBuilder {
	b.tx.FxRateToBase = &rate
	return b
}

// WithConsumedLot names the stock lot a settlement sells from.
func (b *OptionTransactionBuilder) WithConsumedLot(lotID string) *OptionTransactionBuilder {
	b.tx.ConsumedLotID = lotID
	return b
}

// WithDate sets the transaction date.
func (b *OptionTransactionBuilder) WithDate(date time.Time) *OptionTransactionBuilder {
	b.tx.Date = date
	return b
}

// Build computes the OCC symbol, inserts the transaction, and returns it.
func (b *OptionTransactionBuilder) Build(t *testing.T, db *sql.DB) model.OptionTransaction {
	t.Helper()

	b.tx.OptionSymbol = occ.Encode(b.tx.Underlying, b.tx.Expiration, b.tx.OptionType, b.tx.Strike)

	if err := repository.NewOptionTransactionRepository(db).Insert(db, &b.tx); err != nil {
		t.Fatalf("Failed to create test option transaction: %v", err)
	}
	return b.tx
}
