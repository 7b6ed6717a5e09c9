package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/deepstock/deepstock-backend/internal/apperrors"
	"github.com/deepstock/deepstock-backend/internal/model"
)

// The performance aggregator is presentation-oriented: it re-derives its
// figures from date-bounded transaction slices (plus the realized results of
// a full-log fold) instead of reading the ledgers' live state. Realized
// trades always come from a fold of the complete log, because a lot opened
// before the range can be depleted inside it.

// ComputeStockPerformance aggregates stock cash flows and realized trades
// over an inclusive date range. Cash-flow totals cover every transaction in
// range; the trade statistics cover only the realized trades (linked SELLs).
func ComputeStockPerformance(transactions []model.StockTransaction, realized []model.RealizedStockTrade, r model.DateRange) model.StockPerformance {
	var perf model.StockPerformance

	for _, t := range transactions {
		if !r.Contains(t.Date) {
			continue
		}
		switch t.Type {
		case model.StockBuy:
			perf.TotalBuysBase += t.TotalAmountBase()
		case model.StockSell:
			perf.TotalSellsBase += t.TotalAmountBase()
		}
		perf.TotalFeesBase += t.Fees * fxOrOne(t.FxRateToBase)
	}
	perf.NetCashFlowBase = perf.TotalSellsBase - perf.TotalBuysBase - perf.TotalFeesBase

	for _, trade := range realized {
		if !r.Contains(trade.Date) {
			continue
		}
		perf.Trades = append(perf.Trades, trade)
		perf.RealizedGainLoss += trade.RealizedGainLoss
		perf.TradeCount++
		if trade.RealizedGainLoss > 0 {
			perf.WinningTrades++
		}
		if perf.TradeCount == 1 || trade.RealizedGainLoss > perf.BestTrade {
			perf.BestTrade = trade.RealizedGainLoss
		}
		if perf.TradeCount == 1 || trade.RealizedGainLoss < perf.WorstTrade {
			perf.WorstTrade = trade.RealizedGainLoss
		}
	}

	if perf.TradeCount > 0 {
		perf.WinRate = round(float64(perf.WinningTrades) / float64(perf.TradeCount) * 100)
		perf.AverageTrade = round(perf.RealizedGainLoss / float64(perf.TradeCount))
	}

	perf.TotalBuysBase = round(perf.TotalBuysBase)
	perf.TotalSellsBase = round(perf.TotalSellsBase)
	perf.TotalFeesBase = round(perf.TotalFeesBase)
	perf.NetCashFlowBase = round(perf.NetCashFlowBase)
	perf.RealizedGainLoss = round(perf.RealizedGainLoss)
	perf.BestTrade = round(perf.BestTrade)
	perf.WorstTrade = round(perf.WorstTrade)
	return perf
}

// ComputeOptionPerformance partitions option transactions in range into
// opening (BTO, STO) and closing buckets with premium flows in base
// currency, and sums the realized legs falling inside the range.
// EXPIRATION, ASSIGNMENT, and EXERCISE move no premium; they land in the
// closed bucket with their fees only.
func ComputeOptionPerformance(transactions []model.OptionTransaction, legs []model.RealizedOptionLeg, r model.DateRange) model.OptionPerformance {
	var perf model.OptionPerformance

	for _, t := range transactions {
		if !r.Contains(t.Date) {
			continue
		}
		fx := t.FxRateValue()
		premium := t.TotalPremium() * fx
		fees := t.Fees * fx

		bucket := &perf.Closed
		if t.Action.IsOpening() {
			bucket = &perf.Open
		}
		bucket.Transactions++
		bucket.FeesBase += fees

		switch t.Action {
		case model.SellToOpen, model.SellToClose:
			bucket.PremiumReceivedBase += premium
		case model.BuyToOpen, model.BuyToClose:
			bucket.PremiumPaidBase += premium
		}
	}

	for _, leg := range legs {
		if !r.Contains(leg.Date) {
			continue
		}
		perf.Legs = append(perf.Legs, leg)
		perf.RealizedGainLoss += leg.RealizedGainLoss
	}

	finalizeBucket(&perf.Open)
	finalizeBucket(&perf.Closed)
	perf.RealizedGainLoss = round(perf.RealizedGainLoss)
	return perf
}

func finalizeBucket(b *model.OptionPerformanceBucket) {
	b.NetBase = round(b.PremiumReceivedBase - b.PremiumPaidBase - b.FeesBase)
	b.PremiumReceivedBase = round(b.PremiumReceivedBase)
	b.PremiumPaidBase = round(b.PremiumPaidBase)
	b.FeesBase = round(b.FeesBase)
}

// ComputeRealizedSeries builds a date-ordered cumulative series of realized
// P/L (stock trades plus option legs) and net invested cash, one point per
// day with activity inside the range.
func ComputeRealizedSeries(transactions []model.StockTransaction, realized []model.RealizedStockTrade, legs []model.RealizedOptionLeg, r model.DateRange) model.PerformanceSeries {
	type daily struct {
		gainLoss float64
		invested float64
	}
	byDay := make(map[string]*daily)
	day := func(date time.Time) *daily {
		key := date.Format("2006-01-02")
		d, ok := byDay[key]
		if !ok {
			d = &daily{}
			byDay[key] = d
		}
		return d
	}

	for _, t := range transactions {
		if !r.Contains(t.Date) {
			continue
		}
		switch t.Type {
		case model.StockBuy:
			day(t.Date).invested += t.TotalAmountBase()
		case model.StockSell:
			day(t.Date).invested -= t.TotalAmountBase()
		}
	}
	for _, trade := range realized {
		if r.Contains(trade.Date) {
			day(trade.Date).gainLoss += trade.RealizedGainLoss
		}
	}
	for _, leg := range legs {
		if r.Contains(leg.Date) {
			day(leg.Date).gainLoss += leg.RealizedGainLoss
		}
	}

	dates := make([]string, 0, len(byDay))
	for key := range byDay {
		dates = append(dates, key)
	}
	sort.Strings(dates)

	var series model.PerformanceSeries
	var cumGainLoss, cumInvested, peakInvested float64
	for _, key := range dates {
		d := byDay[key]
		cumGainLoss += d.gainLoss
		cumInvested += d.invested
		if cumInvested > peakInvested {
			peakInvested = cumInvested
		}
		series.Data = append(series.Data, model.PerformancePoint{
			Date:     key,
			Value:    round(cumGainLoss),
			Invested: round(cumInvested),
		})
	}

	series.TotalReturn = round(cumGainLoss)
	if peakInvested > 0 {
		series.TotalReturnPct = round(cumGainLoss / peakInvested * 100)
	}
	return series
}

// ResolveDateRange maps a period preset to an inclusive date range ending at
// now. Supported presets: 1W, 1M, 3M, 6M, MTD, YTD, 1Y, ALL (and the empty
// string, treated as ALL).
func ResolveDateRange(preset string, now time.Time) (model.DateRange, error) {
	end := now
	var start time.Time

	switch strings.ToUpper(preset) {
	case "1W":
		start = now.AddDate(0, 0, -7)
	case "1M":
		start = now.AddDate(0, -1, 0)
	case "3M":
		start = now.AddDate(0, -3, 0)
	case "6M":
		start = now.AddDate(0, -6, 0)
	case "MTD":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case "YTD":
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	case "1Y":
		start = now.AddDate(-1, 0, 0)
	case "ALL", "":
		// open start
	default:
		return model.DateRange{}, fmt.Errorf("period %q: %w", preset, apperrors.ErrInvalidDateRange)
	}

	return model.DateRange{Start: start, End: end}, nil
}
