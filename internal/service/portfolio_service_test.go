package service_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/deepstock/deepstock-backend/internal/api/request"
	"github.com/deepstock/deepstock-backend/internal/apperrors"
	"github.com/deepstock/deepstock-backend/internal/model"
	"github.com/deepstock/deepstock-backend/internal/repository"
	"github.com/deepstock/deepstock-backend/internal/testutil"
)

// TestPortfolioService_GetPortfolios tests portfolio retrieval.
//
// WHY: Portfolio retrieval is a fundamental operation. This ensures the
// service correctly returns all portfolios from the database, including edge
// cases like empty databases.
func TestPortfolioService_GetPortfolios(t *testing.T) {
	t.Run("returns empty slice when no portfolios exist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		portfolios, err := svc.GetPortfolios()
		if err != nil {
			t.Fatalf("GetPortfolios() returned unexpected error: %v", err)
		}

		if len(portfolios) != 0 {
			t.Errorf("Expected empty slice, got %d portfolios", len(portfolios))
		}
	})

	t.Run("returns all portfolios", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		p1 := testutil.NewPortfolio().WithName("Long Term").Build(t, db)
		p2 := testutil.NewPortfolio().WithName("Wheel Income").Build(t, db)

		portfolios, err := svc.GetPortfolios()
		if err != nil {
			t.Fatalf("GetPortfolios() returned unexpected error: %v", err)
		}

		if len(portfolios) != 2 {
			t.Fatalf("Expected 2 portfolios, got %d", len(portfolios))
		}

		found := make(map[string]bool)
		for _, p := range portfolios {
			found[p.ID] = true
		}
		if !found[p1.ID] || !found[p2.ID] {
			t.Error("Expected both portfolios in results")
		}
	})

	t.Run("handles closed database connection", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		db.Close()

		if _, err := svc.GetPortfolios(); err == nil {
			t.Error("Expected error when database is closed, got nil")
		}
	})
}

// TestPortfolioService_CreatePortfolio tests portfolio creation.
//
// WHY: Creation must validate input and default the currency to the base
// currency when the request omits one.
func TestPortfolioService_CreatePortfolio(t *testing.T) {
	t.Run("creates a portfolio with explicit currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		created, err := svc.CreatePortfolio(request.CreatePortfolioRequest{
			Name:     "US Growth",
			Currency: "USD",
		})
		if err != nil {
			t.Fatalf("CreatePortfolio() returned unexpected error: %v", err)
		}

		if created.ID == "" {
			t.Error("Expected a generated ID")
		}
		if created.Currency != "USD" {
			t.Errorf("Expected currency USD, got %s", created.Currency)
		}

		stored, err := svc.GetPortfolio(created.ID)
		if err != nil {
			t.Fatalf("GetPortfolio() returned unexpected error: %v", err)
		}
		if stored.Name != "US Growth" {
			t.Errorf("Expected stored name US Growth, got %s", stored.Name)
		}
	})

	t.Run("defaults currency to the base currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		created, err := svc.CreatePortfolio(request.CreatePortfolioRequest{Name: "Domestic"})
		if err != nil {
			t.Fatalf("CreatePortfolio() returned unexpected error: %v", err)
		}

		if created.Currency != "CZK" {
			t.Errorf("Expected base currency CZK, got %s", created.Currency)
		}
	})

	t.Run("rejects a portfolio without a name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		if _, err := svc.CreatePortfolio(request.CreatePortfolioRequest{}); err == nil {
			t.Error("Expected validation error for missing name, got nil")
		}
	})
}

// TestPortfolioService_UpdatePortfolio tests partial updates.
//
// WHY: The update request carries pointers so callers can change one field
// without clobbering the rest.
func TestPortfolioService_UpdatePortfolio(t *testing.T) {
	t.Run("updates only the provided fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		portfolio := testutil.NewPortfolio().WithName("Before").Build(t, db)

		name := "After"
		updated, err := svc.UpdatePortfolio(portfolio.ID, request.UpdatePortfolioRequest{Name: &name})
		if err != nil {
			t.Fatalf("UpdatePortfolio() returned unexpected error: %v", err)
		}

		if updated.Name != "After" {
			t.Errorf("Expected updated name After, got %s", updated.Name)
		}
		if updated.Currency != portfolio.Currency {
			t.Errorf("Expected currency to be untouched, got %s", updated.Currency)
		}
	})

	t.Run("returns not found for an unknown portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		name := "Ghost"
		_, err := svc.UpdatePortfolio(testutil.MakeID(), request.UpdatePortfolioRequest{Name: &name})
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}

// TestPortfolioService_DeletePortfolio tests deletion.
//
// WHY: Deleting a portfolio removes its transaction logs with it, so the
// portfolio must be gone afterwards.
func TestPortfolioService_DeletePortfolio(t *testing.T) {
	t.Run("deletes an existing portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewStockTransaction(portfolio.ID).Build(t, db)

		if err := svc.DeletePortfolio(portfolio.ID); err != nil {
			t.Fatalf("DeletePortfolio() returned unexpected error: %v", err)
		}

		if _, err := svc.GetPortfolio(portfolio.ID); !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound after delete, got %v", err)
		}
	})
}

// TestPortfolioService_GetSummary tests the dashboard summary derivation.
//
// WHY: The summary combines valuation of open stock lots with realized
// results from both ledgers. This fixes the numbers for one concrete
// portfolio so a regression in any layer shows up in the totals.
func TestPortfolioService_GetSummary(t *testing.T) {
	t.Run("combines valuation and realized results", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)

		// BUY 10 AAPL at 100 USD, fx 23.0, then SELL 4 at 120, fx 23.2.
		buy := testutil.NewStockTransaction(portfolio.ID).
			WithFxRate(23.0).
			Build(t, db)
		testutil.NewStockTransaction(portfolio.ID).
			Sell(buy.ID).
			WithShares(4).
			WithPrice(120).
			WithFxRate(23.2).
			WithDate(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, db)

		// One open short call; no realized option legs yet.
		testutil.NewOptionTransaction(portfolio.ID).Build(t, db)

		// Cached quote for the remaining lot. No cached USD rate exists,
		// so valuation falls back to the 23.5 table rate.
		marketRepo := repository.NewMarketRepository(db)
		if err := marketRepo.UpsertQuote(&model.Quote{
			Ticker:    "AAPL",
			Price:     120,
			Currency:  "USD",
			UpdatedAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("Failed to seed quote: %v", err)
		}

		summary, err := svc.GetSummary(portfolio.ID)
		if err != nil {
			t.Fatalf("GetSummary() returned unexpected error: %v", err)
		}

		if summary.Portfolio.ID != portfolio.ID {
			t.Errorf("Expected portfolio %s, got %s", portfolio.ID, summary.Portfolio.ID)
		}
		if summary.Holdings != 1 {
			t.Errorf("Expected 1 holding, got %d", summary.Holdings)
		}
		if summary.OpenOptionPositions != 1 {
			t.Errorf("Expected 1 open option position, got %d", summary.OpenOptionPositions)
		}

		// Remaining lot: 6 shares costing 6 x 100 x 23.0 = 13800.
		if !almostEqual(summary.TotalInvestedBase, 13800) {
			t.Errorf("Expected invested 13800, got %v", summary.TotalInvestedBase)
		}
		// Market value: 6 x 120 x 23.5 = 16920.
		if !almostEqual(summary.TotalMarketValueBase, 16920) {
			t.Errorf("Expected market value 16920, got %v", summary.TotalMarketValueBase)
		}
		if !almostEqual(summary.UnrealizedGainLoss, 3120) {
			t.Errorf("Expected unrealized 3120, got %v", summary.UnrealizedGainLoss)
		}
		// Realized: 4 x 120 x 23.2 minus 4 x 100 x 23.0 = 1936.
		if !almostEqual(summary.RealizedStockGainLoss, 1936) {
			t.Errorf("Expected realized stock 1936, got %v", summary.RealizedStockGainLoss)
		}
		if !almostEqual(summary.RealizedOptionGainLoss, 0) {
			t.Errorf("Expected no realized option P/L, got %v", summary.RealizedOptionGainLoss)
		}
	})

	t.Run("returns not found for an unknown portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		_, err := svc.GetSummary(testutil.MakeID())
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}

// TestPortfolioService_Tickers tests ticker collection for the quote refresh.
//
// WHY: The background refresh fetches quotes for every distinct symbol held
// or traded. Duplicates across portfolios and across the two ledgers must
// collapse to one entry.
func TestPortfolioService_Tickers(t *testing.T) {
	t.Run("collects distinct tickers across both ledgers", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		p1 := testutil.NewPortfolio().Build(t, db)
		p2 := testutil.NewPortfolio().Build(t, db)

		testutil.NewStockTransaction(p1.ID).Build(t, db)
		testutil.NewStockTransaction(p1.ID).WithTicker("MSFT").Build(t, db)
		testutil.NewStockTransaction(p2.ID).Build(t, db)
		testutil.NewOptionTransaction(p2.ID).WithUnderlying("TSLA").Build(t, db)

		tickers, err := svc.Tickers()
		if err != nil {
			t.Fatalf("Tickers() returned unexpected error: %v", err)
		}

		if len(tickers) != 3 {
			t.Fatalf("Expected 3 distinct tickers, got %d: %v", len(tickers), tickers)
		}

		found := make(map[string]bool)
		for _, ticker := range tickers {
			found[ticker] = true
		}
		for _, want := range []string{"AAPL", "MSFT", "TSLA"} {
			if !found[want] {
				t.Errorf("Expected ticker %s in results", want)
			}
		}
	})

	t.Run("returns nothing for an empty database", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		tickers, err := svc.Tickers()
		if err != nil {
			t.Fatalf("Tickers() returned unexpected error: %v", err)
		}
		if len(tickers) != 0 {
			t.Errorf("Expected no tickers, got %v", tickers)
		}
	})
}

// TestPortfolioService_GetOpenLots tests the open lot listing.
//
// WHY: Sell requests name a source lot, so the open lot view must list
// remaining shares per lot in purchase order.
func TestPortfolioService_GetOpenLots(t *testing.T) {
	t.Run("lists remaining shares per lot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)

		buy := testutil.NewStockTransaction(portfolio.ID).Build(t, db)
		testutil.NewStockTransaction(portfolio.ID).
			Sell(buy.ID).
			WithShares(3).
			WithDate(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, db)

		lots, err := svc.GetOpenLots(portfolio.ID)
		if err != nil {
			t.Fatalf("GetOpenLots() returned unexpected error: %v", err)
		}

		if len(lots) != 1 {
			t.Fatalf("Expected 1 open lot, got %d", len(lots))
		}
		if lots[0].LotID != buy.ID {
			t.Errorf("Expected lot %s, got %s", buy.ID, lots[0].LotID)
		}
		if math.Abs(lots[0].RemainingShares-7) > 1e-9 {
			t.Errorf("Expected 7 remaining shares, got %v", lots[0].RemainingShares)
		}
	})
}
