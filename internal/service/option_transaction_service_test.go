package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/deepstock/deepstock-backend/internal/api/request"
	"github.com/deepstock/deepstock-backend/internal/apperrors"
	"github.com/deepstock/deepstock-backend/internal/model"
	"github.com/deepstock/deepstock-backend/internal/testutil"
)

func fxRate(v float64) *float64 {
	return &v
}

// TestOptionTransactionService_CreateTransaction tests option trade recording
// with commit-time stream validation.
//
// WHY: Stream legality depends on the freshest fold of the log; a closing
// action in the wrong direction or beyond the open count must be rejected
// without touching the log.
func TestOptionTransactionService_CreateTransaction(t *testing.T) {
	t.Run("records an opening trade with derived OCC symbol", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionTransactionService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)

		created, stockLeg, err := svc.CreateTransaction(request.CreateOptionTransactionRequest{
			PortfolioID:  portfolio.ID,
			Underlying:   "aapl",
			OptionType:   "call",
			Strike:       150,
			Expiration:   "2024-06-21",
			Action:       "STO",
			Contracts:    1,
			Premium:      fxRate(5),
			Currency:     "USD",
			FxRateToBase: fxRate(1),
			Date:         "2024-01-10",
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}
		if stockLeg != nil {
			t.Errorf("Expected no stock leg for STO, got %+v", stockLeg)
		}
		if created.OptionSymbol != "AAPL240621C00150000" {
			t.Errorf("Expected symbol AAPL240621C00150000, got %s", created.OptionSymbol)
		}

		ledger, err := svc.GetLedger(portfolio.ID)
		if err != nil {
			t.Fatalf("GetLedger() returned unexpected error: %v", err)
		}
		if got := ledger.NetContracts(created.OptionSymbol); got != -1 {
			t.Errorf("Expected net -1 after STO, got %d", got)
		}
	})

	t.Run("closing in the wrong direction is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionTransactionService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewOptionTransaction(portfolio.ID).Build(t, db) // STO 1

		_, _, err := svc.CreateTransaction(request.CreateOptionTransactionRequest{
			PortfolioID:  portfolio.ID,
			Underlying:   "AAPL",
			OptionType:   "call",
			Strike:       150,
			Expiration:   "2024-06-21",
			Action:       "BTC",
			Contracts:    1,
			Premium:      fxRate(2),
			Currency:     "USD",
			FxRateToBase: fxRate(1),
			Date:         "2024-02-10",
		})
		if !errors.Is(err, apperrors.ErrInvalidPositionTransition) {
			t.Fatalf("Expected ErrInvalidPositionTransition, got %v", err)
		}

		transactions, err := svc.GetTransactions(portfolio.ID)
		if err != nil {
			t.Fatalf("GetTransactions() returned unexpected error: %v", err)
		}
		if len(transactions) != 1 {
			t.Errorf("Expected rejected close to leave 1 transaction, got %d", len(transactions))
		}
	})

	t.Run("short call assignment sells the named lot at strike plus premium", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionTransactionService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)
		lot := testutil.NewStockTransaction(portfolio.ID).
			WithShares(100).
			WithPrice(40).
			Build(t, db)
		testutil.NewOptionTransaction(portfolio.ID).
			WithStrike(50).
			WithPremium(5).
			Build(t, db) // STO 1 call @ 5

		created, stockLeg, err := svc.CreateTransaction(request.CreateOptionTransactionRequest{
			PortfolioID:   portfolio.ID,
			Underlying:    "AAPL",
			OptionType:    "call",
			Strike:        50,
			Expiration:    "2024-06-21",
			Action:        "ASSIGNMENT",
			Contracts:     1,
			Currency:      "USD",
			FxRateToBase:  fxRate(1),
			ConsumedLotID: lot.ID,
			Date:          "2024-06-21",
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}
		if stockLeg == nil {
			t.Fatal("Expected a linked stock leg")
		}
		if stockLeg.Type != model.StockSell {
			t.Errorf("Expected SELL leg, got %s", stockLeg.Type)
		}
		if !almostEqual(stockLeg.Shares, 100) {
			t.Errorf("Expected 100 shares, got %v", stockLeg.Shares)
		}
		// Effective price: strike 50 + average premium 5
		if !almostEqual(stockLeg.PricePerShare, 55) {
			t.Errorf("Expected effective price 55, got %v", stockLeg.PricePerShare)
		}
		if stockLeg.SourceLotID != lot.ID {
			t.Errorf("Expected leg to deplete lot %s, got %s", lot.ID, stockLeg.SourceLotID)
		}
		if created.LinkedStockTransactionID != stockLeg.ID {
			t.Error("Expected option transaction linked to the stock leg")
		}

		// Both ledgers reflect the settlement.
		optionLedger, err := svc.GetLedger(portfolio.ID)
		if err != nil {
			t.Fatalf("GetLedger() returned unexpected error: %v", err)
		}
		if got := optionLedger.NetContracts(created.OptionSymbol); got != 0 {
			t.Errorf("Expected position closed, got net %d", got)
		}

		stockSvc := testutil.NewTestStockTransactionService(t, db)
		stockLedger, err := stockSvc.GetLedger(portfolio.ID)
		if err != nil {
			t.Fatalf("stock GetLedger() returned unexpected error: %v", err)
		}
		if got := stockLedger.Lot(lot.ID).RemainingShares; got != 0 {
			t.Errorf("Expected lot fully consumed, got %v shares", got)
		}
	})

	t.Run("share-selling assignment without a lot fails atomically", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionTransactionService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewOptionTransaction(portfolio.ID).WithStrike(50).Build(t, db)

		_, _, err := svc.CreateTransaction(request.CreateOptionTransactionRequest{
			PortfolioID:  portfolio.ID,
			Underlying:   "AAPL",
			OptionType:   "call",
			Strike:       50,
			Expiration:   "2024-06-21",
			Action:       "ASSIGNMENT",
			Contracts:    1,
			Currency:     "USD",
			FxRateToBase: fxRate(1),
			Date:         "2024-06-21",
		})
		if !errors.Is(err, apperrors.ErrLotSelectionRequired) {
			t.Fatalf("Expected ErrLotSelectionRequired, got %v", err)
		}

		// Neither leg committed.
		transactions, err := svc.GetTransactions(portfolio.ID)
		if err != nil {
			t.Fatalf("GetTransactions() returned unexpected error: %v", err)
		}
		if len(transactions) != 1 {
			t.Errorf("Expected only the STO in the option log, got %d", len(transactions))
		}
	})

	t.Run("short put assignment buys a new lot at strike minus premium", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionTransactionService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewOptionTransaction(portfolio.ID).
			WithType(model.Put).
			WithStrike(50).
			WithPremium(3).
			Build(t, db) // STO 1 put @ 3

		_, stockLeg, err := svc.CreateTransaction(request.CreateOptionTransactionRequest{
			PortfolioID:  portfolio.ID,
			Underlying:   "AAPL",
			OptionType:   "put",
			Strike:       50,
			Expiration:   "2024-06-21",
			Action:       "ASSIGNMENT",
			Contracts:    1,
			Currency:     "USD",
			FxRateToBase: fxRate(1),
			Date:         "2024-06-21",
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}
		if stockLeg == nil || stockLeg.Type != model.StockBuy {
			t.Fatalf("Expected BUY leg, got %+v", stockLeg)
		}
		// Effective price: strike 50 - average premium 3
		if !almostEqual(stockLeg.PricePerShare, 47) {
			t.Errorf("Expected effective price 47, got %v", stockLeg.PricePerShare)
		}
	})

	t.Run("long call exercise buys at the plain strike", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionTransactionService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewOptionTransaction(portfolio.ID).
			WithAction(model.BuyToOpen).
			WithStrike(150).
			WithPremium(3).
			Build(t, db)

		_, stockLeg, err := svc.CreateTransaction(request.CreateOptionTransactionRequest{
			PortfolioID:  portfolio.ID,
			Underlying:   "AAPL",
			OptionType:   "call",
			Strike:       150,
			Expiration:   "2024-06-21",
			Action:       "EXERCISE",
			Contracts:    1,
			Currency:     "USD",
			FxRateToBase: fxRate(1),
			Date:         "2024-06-21",
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}
		if stockLeg == nil || stockLeg.Type != model.StockBuy {
			t.Fatalf("Expected BUY leg, got %+v", stockLeg)
		}
		if !almostEqual(stockLeg.PricePerShare, 150) {
			t.Errorf("Expected plain strike 150, got %v", stockLeg.PricePerShare)
		}
	})
}

// TestOptionTransactionService_ClosePosition tests one-step position closing.
//
// WHY: The closing direction must be derived from the position's side, and a
// zero contract count must close the whole position.
func TestOptionTransactionService_ClosePosition(t *testing.T) {
	t.Run("closes a short position with STC", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionTransactionService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)
		opened := testutil.NewOptionTransaction(portfolio.ID).
			WithContracts(2).
			WithPremium(5).
			Build(t, db)

		closed, err := svc.ClosePosition(portfolio.ID, opened.OptionSymbol, request.ClosePositionRequest{
			Premium:      2,
			FxRateToBase: fxRate(1),
			Date:         "2024-03-10",
		})
		if err != nil {
			t.Fatalf("ClosePosition() returned unexpected error: %v", err)
		}
		if closed.Action != model.SellToClose {
			t.Errorf("Expected STC for a short position, got %s", closed.Action)
		}
		if closed.Contracts != 2 {
			t.Errorf("Expected full close of 2 contracts, got %d", closed.Contracts)
		}

		ledger, err := svc.GetLedger(portfolio.ID)
		if err != nil {
			t.Fatalf("GetLedger() returned unexpected error: %v", err)
		}
		if got := ledger.NetContracts(opened.OptionSymbol); got != 0 {
			t.Errorf("Expected position closed, got net %d", got)
		}
	})

	t.Run("closes a long position with BTC", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionTransactionService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)
		opened := testutil.NewOptionTransaction(portfolio.ID).
			WithAction(model.BuyToOpen).
			WithContracts(2).
			WithPremium(3).
			Build(t, db)

		closed, err := svc.ClosePosition(portfolio.ID, opened.OptionSymbol, request.ClosePositionRequest{
			Premium:      1,
			Contracts:    1,
			FxRateToBase: fxRate(1),
			Date:         "2024-03-10",
		})
		if err != nil {
			t.Fatalf("ClosePosition() returned unexpected error: %v", err)
		}
		if closed.Action != model.BuyToClose {
			t.Errorf("Expected BTC for a long position, got %s", closed.Action)
		}

		ledger, err := svc.GetLedger(portfolio.ID)
		if err != nil {
			t.Fatalf("GetLedger() returned unexpected error: %v", err)
		}
		if got := ledger.NetContracts(opened.OptionSymbol); got != 1 {
			t.Errorf("Expected 1 contract still open, got %d", got)
		}
	})

	t.Run("unknown symbol fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionTransactionService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)

		_, err := svc.ClosePosition(portfolio.ID, "AAPL240621C00150000", request.ClosePositionRequest{
			Premium: 1,
			Date:    "2024-03-10",
		})
		if !errors.Is(err, apperrors.ErrOptionPositionNotFound) {
			t.Errorf("Expected ErrOptionPositionNotFound, got %v", err)
		}
	})
}

// TestOptionTransactionService_DeleteTransaction tests compound deletes.
//
// WHY: An assignment's option and stock legs were committed together; the
// delete must remove both or, when later transactions depend on the state,
// neither.
func TestOptionTransactionService_DeleteTransaction(t *testing.T) {
	t.Run("deletes an assignment together with its stock leg", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionTransactionService(t, db)
		stockSvc := testutil.NewTestStockTransactionService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)
		lot := testutil.NewStockTransaction(portfolio.ID).
			WithShares(100).
			WithPrice(40).
			Build(t, db)
		testutil.NewOptionTransaction(portfolio.ID).
			WithStrike(50).
			WithPremium(5).
			Build(t, db)

		created, stockLeg, err := svc.CreateTransaction(request.CreateOptionTransactionRequest{
			PortfolioID:   portfolio.ID,
			Underlying:    "AAPL",
			OptionType:    "call",
			Strike:        50,
			Expiration:    "2024-06-21",
			Action:        "ASSIGNMENT",
			Contracts:     1,
			Currency:      "USD",
			FxRateToBase:  fxRate(1),
			ConsumedLotID: lot.ID,
			Date:          "2024-06-21",
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}

		if err := svc.DeleteTransaction(created.ID); err != nil {
			t.Fatalf("DeleteTransaction() returned unexpected error: %v", err)
		}

		if _, err := svc.GetTransaction(created.ID); !errors.Is(err, apperrors.ErrOptionTransactionNotFound) {
			t.Errorf("Expected option transaction gone, got %v", err)
		}
		if _, err := stockSvc.GetTransaction(stockLeg.ID); !errors.Is(err, apperrors.ErrTransactionNotFound) {
			t.Errorf("Expected stock leg gone, got %v", err)
		}

		// The lot's shares are restored by the refold.
		ledger, err := stockSvc.GetLedger(portfolio.ID)
		if err != nil {
			t.Fatalf("GetLedger() returned unexpected error: %v", err)
		}
		if got := ledger.Lot(lot.ID).RemainingShares; !almostEqual(got, 100) {
			t.Errorf("Expected lot restored to 100 shares, got %v", got)
		}
	})

	t.Run("delete of a depended-on open is refused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionTransactionService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)
		opened := testutil.NewOptionTransaction(portfolio.ID).WithPremium(5).Build(t, db)
		testutil.NewOptionTransaction(portfolio.ID).
			WithAction(model.SellToClose).
			WithPremium(2).
			WithDate(opened.Date.AddDate(0, 1, 0)).
			Build(t, db)

		err := svc.DeleteTransaction(opened.ID)
		if !errors.Is(err, apperrors.ErrInvalidPositionTransition) {
			t.Errorf("Expected ErrInvalidPositionTransition from the replay check, got %v", err)
		}
	})
}

// TestOptionTransactionService_GetStats tests the open-position stats view.
//
// WHY: The stats endpoint is a thin projection over the fold; a closed
// stream must not leak into the counts.
func TestOptionTransactionService_GetStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestOptionTransactionService(t, db)
	portfolio := testutil.NewPortfolio().Build(t, db)
	testutil.NewOptionTransaction(portfolio.ID).WithPremium(5).Build(t, db)
	testutil.NewOptionTransaction(portfolio.ID).
		WithUnderlying("MSFT").
		WithType(model.Put).
		WithStrike(420).
		WithAction(model.BuyToOpen).
		WithPremium(8).
		WithExpiration(time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC)).
		Build(t, db)

	stats, err := svc.GetStats(portfolio.ID)
	if err != nil {
		t.Fatalf("GetStats() returned unexpected error: %v", err)
	}
	if stats.TotalPositions != 2 {
		t.Errorf("Expected 2 positions, got %d", stats.TotalPositions)
	}
	if stats.ShortPositions != 1 || stats.LongPositions != 1 {
		t.Errorf("Expected 1 short / 1 long, got %d / %d", stats.ShortPositions, stats.LongPositions)
	}
	if stats.Calls != 1 || stats.Puts != 1 {
		t.Errorf("Expected 1 call / 1 put, got %d / %d", stats.Calls, stats.Puts)
	}
}

// TestOptionTransactionService_UpdateTransaction tests replay-checked
// corrections of option legs.
//
// WHY: Corrections rewrite history; shrinking an open below what a later
// close consumes must be refused, and settlement legs must stay in sync with
// their linked stock legs.
func TestOptionTransactionService_UpdateTransaction(t *testing.T) {
	t.Run("corrects premium and fees in place", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionTransactionService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)
		opened := testutil.NewOptionTransaction(portfolio.ID).WithPremium(3).Build(t, db)

		premium := 3.5
		fees := 0.65
		updated, err := svc.UpdateTransaction(opened.ID, request.UpdateOptionTransactionRequest{
			Premium: &premium,
			Fees:    &fees,
		})
		if err != nil {
			t.Fatalf("UpdateTransaction() returned unexpected error: %v", err)
		}

		if updated.PremiumValue() != 3.5 || updated.Fees != 0.65 {
			t.Errorf("Expected corrected 3.5/0.65, got %v/%v", updated.PremiumValue(), updated.Fees)
		}

		ledger, err := svc.GetLedger(portfolio.ID)
		if err != nil {
			t.Fatalf("GetLedger() returned unexpected error: %v", err)
		}
		holdings := ledger.Holdings()
		if len(holdings) != 1 {
			t.Fatalf("Expected 1 open position, got %d", len(holdings))
		}
		if holdings[0].AvgPremiumPerContract != 3.5 {
			t.Errorf("Expected corrected average premium 3.5, got %v", holdings[0].AvgPremiumPerContract)
		}
	})

	t.Run("shrinking an open below a later close is refused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionTransactionService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)
		opened := testutil.NewOptionTransaction(portfolio.ID).
			WithContracts(2).
			Build(t, db)
		testutil.NewOptionTransaction(portfolio.ID).
			WithAction(model.SellToClose).
			WithContracts(2).
			WithPremium(1).
			WithDate(opened.Date.AddDate(0, 1, 0)).
			Build(t, db)

		contracts := 1
		_, err := svc.UpdateTransaction(opened.ID, request.UpdateOptionTransactionRequest{Contracts: &contracts})
		if !errors.Is(err, apperrors.ErrInvalidPositionTransition) {
			t.Fatalf("Expected ErrInvalidPositionTransition from the replay check, got %v", err)
		}

		stored, err := svc.GetTransaction(opened.ID)
		if err != nil {
			t.Fatalf("GetTransaction() returned unexpected error: %v", err)
		}
		if stored.Contracts != 2 {
			t.Errorf("Expected log untouched with 2 contracts, got %d", stored.Contracts)
		}
	})

	t.Run("rejects a premium correction on an expiration", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionTransactionService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)
		opened := testutil.NewOptionTransaction(portfolio.ID).Build(t, db)
		expired := testutil.NewOptionTransaction(portfolio.ID).
			WithAction(model.Expiration).
			NoPremium().
			WithDate(opened.Date.AddDate(0, 5, 0)).
			Build(t, db)

		premium := 1.0
		_, err := svc.UpdateTransaction(expired.ID, request.UpdateOptionTransactionRequest{Premium: &premium})
		if err == nil {
			t.Fatal("Expected error correcting premium on an EXPIRATION, got nil")
		}
	})
}
