package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/deepstock/deepstock-backend/internal/apperrors"
	"github.com/deepstock/deepstock-backend/internal/model"
	"github.com/deepstock/deepstock-backend/internal/service"
)

// TestComputeStockPerformance tests stock cash-flow and trade aggregation.
//
// WHY: Cash-flow totals must cover every transaction in range while trade
// statistics cover only realized (linked) trades, and both must respect the
// inclusive date bounds.
func TestComputeStockPerformance(t *testing.T) {
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	transactions := []model.StockTransaction{
		buyTx("buy1", "AAPL", 10, 100, 1, jan),
		sellTx("sell1", "AAPL", "buy1", 4, 120, 1, feb),
	}
	transactions[1].Fees = 5

	realized := []model.RealizedStockTrade{
		{TransactionID: "sell1", RealizedGainLoss: 80, Date: feb},
		{TransactionID: "sell2", RealizedGainLoss: -30, Date: mar},
	}

	t.Run("aggregates over full range", func(t *testing.T) {
		perf := service.ComputeStockPerformance(transactions, realized, model.DateRange{})

		if !almostEqual(perf.TotalBuysBase, 1000) {
			t.Errorf("Expected buys 1000, got %v", perf.TotalBuysBase)
		}
		if !almostEqual(perf.TotalSellsBase, 480) {
			t.Errorf("Expected sells 480, got %v", perf.TotalSellsBase)
		}
		if !almostEqual(perf.TotalFeesBase, 5) {
			t.Errorf("Expected fees 5, got %v", perf.TotalFeesBase)
		}
		// 480 - 1000 - 5
		if !almostEqual(perf.NetCashFlowBase, -525) {
			t.Errorf("Expected net cash flow -525, got %v", perf.NetCashFlowBase)
		}
		if perf.TradeCount != 2 || perf.WinningTrades != 1 {
			t.Errorf("Expected 2 trades / 1 winner, got %d / %d", perf.TradeCount, perf.WinningTrades)
		}
		if !almostEqual(perf.WinRate, 50) {
			t.Errorf("Expected win rate 50, got %v", perf.WinRate)
		}
		if !almostEqual(perf.AverageTrade, 25) {
			t.Errorf("Expected average trade 25, got %v", perf.AverageTrade)
		}
		if !almostEqual(perf.BestTrade, 80) || !almostEqual(perf.WorstTrade, -30) {
			t.Errorf("Expected best 80 / worst -30, got %v / %v", perf.BestTrade, perf.WorstTrade)
		}
	})

	t.Run("date range bounds are inclusive", func(t *testing.T) {
		perf := service.ComputeStockPerformance(transactions, realized, model.DateRange{Start: feb, End: feb})

		if perf.TradeCount != 1 {
			t.Errorf("Expected 1 trade in range, got %d", perf.TradeCount)
		}
		if !almostEqual(perf.TotalBuysBase, 0) {
			t.Errorf("Expected no buys in range, got %v", perf.TotalBuysBase)
		}
		if !almostEqual(perf.RealizedGainLoss, 80) {
			t.Errorf("Expected realized 80, got %v", perf.RealizedGainLoss)
		}
	})

	t.Run("all-loss range keeps best trade negative", func(t *testing.T) {
		perf := service.ComputeStockPerformance(nil, realized, model.DateRange{Start: mar})

		if !almostEqual(perf.BestTrade, -30) || !almostEqual(perf.WorstTrade, -30) {
			t.Errorf("Expected best and worst -30, got %v / %v", perf.BestTrade, perf.WorstTrade)
		}
		if perf.WinRate != 0 {
			t.Errorf("Expected win rate 0, got %v", perf.WinRate)
		}
	})
}

// TestComputeOptionPerformance tests the open/closed premium partition.
//
// WHY: STO and STC both receive premium while BTO and BTC both pay it, but
// they land in opposite buckets; settlement actions move no premium at all.
func TestComputeOptionPerformance(t *testing.T) {
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	transactions := []model.OptionTransaction{
		optTx("t1", model.SellToOpen, 2, premium(5), 2, jan),
		optTx("t2", model.BuyToClose, 1, premium(2), 1, feb),
		optTx("t3", model.Expiration, 1, nil, 0.5, feb),
	}

	legs := []model.RealizedOptionLeg{
		{TransactionID: "t2", RealizedGainLoss: 299, Date: feb},
		{TransactionID: "t3", RealizedGainLoss: 499.5, Date: feb},
	}

	perf := service.ComputeOptionPerformance(transactions, legs, model.DateRange{})

	// STO: 5 x 2 x 100 = 1000 received
	if !almostEqual(perf.Open.PremiumReceivedBase, 1000) {
		t.Errorf("Expected open received 1000, got %v", perf.Open.PremiumReceivedBase)
	}
	if !almostEqual(perf.Open.FeesBase, 2) {
		t.Errorf("Expected open fees 2, got %v", perf.Open.FeesBase)
	}
	if !almostEqual(perf.Open.NetBase, 998) {
		t.Errorf("Expected open net 998, got %v", perf.Open.NetBase)
	}

	// BTC: 2 x 1 x 100 = 200 paid; EXPIRATION moves no premium
	if !almostEqual(perf.Closed.PremiumPaidBase, 200) {
		t.Errorf("Expected closed paid 200, got %v", perf.Closed.PremiumPaidBase)
	}
	if !almostEqual(perf.Closed.FeesBase, 1.5) {
		t.Errorf("Expected closed fees 1.5, got %v", perf.Closed.FeesBase)
	}
	if perf.Closed.Transactions != 2 {
		t.Errorf("Expected 2 closed transactions, got %d", perf.Closed.Transactions)
	}

	if !almostEqual(perf.RealizedGainLoss, 798.5) {
		t.Errorf("Expected realized 798.5, got %v", perf.RealizedGainLoss)
	}
	if len(perf.Legs) != 2 {
		t.Errorf("Expected 2 legs, got %d", len(perf.Legs))
	}
}

// TestComputeRealizedSeries tests the cumulative daily series.
//
// WHY: The chart needs one cumulative point per active day, and the return
// percentage must be measured against the invested peak, not the final
// (possibly zero) invested amount.
func TestComputeRealizedSeries(t *testing.T) {
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	transactions := []model.StockTransaction{
		buyTx("buy1", "AAPL", 10, 100, 1, jan),
		sellTx("sell1", "AAPL", "buy1", 10, 110, 1, feb),
	}
	realized := []model.RealizedStockTrade{
		{TransactionID: "sell1", RealizedGainLoss: 100, Date: feb},
	}
	legs := []model.RealizedOptionLeg{
		{TransactionID: "t1", RealizedGainLoss: 50, Date: feb},
	}

	series := service.ComputeRealizedSeries(transactions, realized, legs, model.DateRange{})

	if len(series.Data) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(series.Data))
	}
	if series.Data[0].Date != "2024-01-10" || series.Data[1].Date != "2024-02-10" {
		t.Errorf("Expected date-ordered points, got %s then %s", series.Data[0].Date, series.Data[1].Date)
	}
	if !almostEqual(series.Data[0].Invested, 1000) {
		t.Errorf("Expected invested 1000 on day 1, got %v", series.Data[0].Invested)
	}
	// Day 2: sell returns 1100, invested 1000-1100 = -100 cumulative
	if !almostEqual(series.Data[1].Value, 150) {
		t.Errorf("Expected cumulative 150 on day 2, got %v", series.Data[1].Value)
	}
	if !almostEqual(series.TotalReturn, 150) {
		t.Errorf("Expected total return 150, got %v", series.TotalReturn)
	}
	// Against the peak of 1000 invested
	if !almostEqual(series.TotalReturnPct, 15) {
		t.Errorf("Expected return pct 15, got %v", series.TotalReturnPct)
	}
}

// TestResolveDateRange tests period preset resolution.
//
// WHY: Every performance endpoint takes a preset; an unknown one must fail
// loudly instead of silently widening to ALL.
func TestResolveDateRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		preset    string
		wantStart time.Time
	}{
		{"1W", now.AddDate(0, 0, -7)},
		{"1M", now.AddDate(0, -1, 0)},
		{"3M", now.AddDate(0, -3, 0)},
		{"6M", now.AddDate(0, -6, 0)},
		{"MTD", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"YTD", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"1Y", now.AddDate(-1, 0, 0)},
		{"ALL", time.Time{}},
		{"", time.Time{}},
		{"ytd", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, // case-insensitive
	}

	for _, tc := range cases {
		t.Run("preset "+tc.preset, func(t *testing.T) {
			r, err := service.ResolveDateRange(tc.preset, now)
			if err != nil {
				t.Fatalf("ResolveDateRange(%q) returned unexpected error: %v", tc.preset, err)
			}
			if !r.Start.Equal(tc.wantStart) {
				t.Errorf("Expected start %v, got %v", tc.wantStart, r.Start)
			}
			if !r.End.Equal(now) {
				t.Errorf("Expected end %v, got %v", now, r.End)
			}
		})
	}

	t.Run("unknown preset fails", func(t *testing.T) {
		_, err := service.ResolveDateRange("5D", now)
		if !errors.Is(err, apperrors.ErrInvalidDateRange) {
			t.Errorf("Expected ErrInvalidDateRange, got %v", err)
		}
	})
}
