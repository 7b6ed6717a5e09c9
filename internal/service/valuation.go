package service

import (
	"time"

	"github.com/deepstock/deepstock-backend/internal/currency"
	"github.com/deepstock/deepstock-backend/internal/model"
)

// Valuation is a pure function of ledger state plus live market data. Live
// prices and FX rates only ever touch unrealized figures; realized P/L is
// fixed at the transactions' locked rates and never recomputed here.

// ValueHoldings computes the current market value and unrealized P/L of each
// stock holding using the live quote and FX tables. Holdings whose ticker
// has no cached quote keep a zero market value and zero unrealized figures
// rather than reporting a total loss. An FX fallback (unknown currency,
// treated as rate 1) is flagged on the valuation.
func ValueHoldings(holdings []model.Holding, quotes map[string]model.Quote, norm *currency.Normalizer, rates map[string]float64) []model.HoldingValuation {
	valuations := make([]model.HoldingValuation, 0, len(holdings))
	for _, h := range holdings {
		v := model.HoldingValuation{Holding: h}

		if q, ok := quotes[h.Ticker]; ok && q.Price > 0 {
			marketValue, rateFound := norm.ToBaseChecked(q.Price*h.TotalShares, q.Currency, rates)
			v.LastPrice = q.Price
			v.PriceChange = q.Change
			v.MarketValueBase = round(marketValue)
			v.UnrealizedGainLoss = round(marketValue - h.TotalInvestedBase)
			if h.TotalInvestedBase != 0 {
				v.UnrealizedPct = round((marketValue - h.TotalInvestedBase) / h.TotalInvestedBase * 100)
			}
			v.RateFallback = !rateFound
		}

		valuations = append(valuations, v)
	}
	return valuations
}

// ComputeMoneyness classifies an option against the live underlying price.
// Classification is binary by default: a call is ITM when the price is above
// the strike, a put when it is below; everything else is OTM. ATM is only
// reported when the caller supplies a positive tolerance and the price is
// within it. Without a tolerance an exact strike touch counts as OTM.
func ComputeMoneyness(optionType model.OptionType, strike, underlyingPrice, tolerance float64) model.Moneyness {
	if tolerance > 0 {
		diff := underlyingPrice - strike
		if diff <= tolerance && diff >= -tolerance {
			return model.AtTheMoney
		}
	}

	switch optionType {
	case model.Call:
		if underlyingPrice > strike {
			return model.InTheMoney
		}
	case model.Put:
		if underlyingPrice < strike {
			return model.InTheMoney
		}
	}
	return model.OutTheMoney
}

// Breakeven returns the underlying price at which the position's premium is
// exactly recovered: strike plus the average premium for calls, strike minus
// it for puts.
func Breakeven(optionType model.OptionType, strike, avgPremiumPerContract float64) float64 {
	if optionType == model.Call {
		return strike + avgPremiumPerContract
	}
	return strike - avgPremiumPerContract
}

// BufferPercent returns the signed distance from breakeven to the live
// underlying price as a percentage of that price. The sign flips with
// position direction so that a positive buffer always means the position is
// currently safe: long calls and short puts want the price above breakeven,
// long puts and short calls want it below.
func BufferPercent(position model.PositionSide, optionType model.OptionType, underlyingPrice, breakeven float64) float64 {
	if underlyingPrice == 0 {
		return 0
	}

	direction := -1.0
	if (position == model.Long && optionType == model.Call) ||
		(position == model.Short && optionType == model.Put) {
		direction = 1.0
	}
	return direction * (underlyingPrice - breakeven) / underlyingPrice * 100
}

// ValueOptionHolding computes the live metrics for one open option position.
// A zero underlying price leaves moneyness at OTM and the buffer at zero.
func ValueOptionHolding(h model.OptionHolding, underlyingPrice, atmTolerance float64) model.OptionHoldingMetrics {
	breakeven := Breakeven(h.OptionType, h.Strike, h.AvgPremiumPerContract)
	return model.OptionHoldingMetrics{
		OptionHolding:   h,
		UnderlyingPrice: underlyingPrice,
		Moneyness:       ComputeMoneyness(h.OptionType, h.Strike, underlyingPrice, atmTolerance),
		Breakeven:       round(breakeven),
		BufferPercent:   round(BufferPercent(h.Position, h.OptionType, underlyingPrice, breakeven)),
	}
}

// ComputeOptionStats summarizes open option positions for the dashboard:
// counts by side and type, positions expiring within the next seven days,
// and the ITM/OTM split against cached underlying quotes.
func ComputeOptionStats(holdings []model.OptionHolding, quotes map[string]model.Quote, now time.Time) model.OptionStats {
	stats := model.OptionStats{TotalPositions: len(holdings)}
	weekAhead := now.AddDate(0, 0, 7)

	for _, h := range holdings {
		if h.Position == model.Long {
			stats.LongPositions++
		} else {
			stats.ShortPositions++
		}
		if h.OptionType == model.Call {
			stats.Calls++
		} else {
			stats.Puts++
		}
		if !h.Expiration.Before(now) && !h.Expiration.After(weekAhead) {
			stats.ExpiringThisWeek++
		}
		if q, ok := quotes[h.Underlying]; ok && q.Price > 0 {
			if ComputeMoneyness(h.OptionType, h.Strike, q.Price, 0) == model.InTheMoney {
				stats.ITMCount++
			} else {
				stats.OTMCount++
			}
		}
	}
	return stats
}
