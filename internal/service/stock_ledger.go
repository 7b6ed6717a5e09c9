package service

import (
	"fmt"
	"sort"

	"github.com/deepstock/deepstock-backend/internal/apperrors"
	"github.com/deepstock/deepstock-backend/internal/model"
)

// StockLedger is the materialized state of a stock transaction log: the open
// lots, and the realized trades produced by lot-linked sells. It is rebuilt
// by folding the log from the beginning; the ledger itself is never stored.
//
// Lot accounting rules:
//   - Every BUY opens a lot identified by the BUY transaction's ID.
//   - A SELL that names a source lot depletes that lot and realizes a gain
//     or loss against the lot's locked FX rate.
//   - A SELL without a source lot is recorded as cash flow only; it touches
//     no lot and realizes nothing.
type StockLedger struct {
	lotsByID map[string]*model.OpenLot
	lotOrder []string
	realized []model.RealizedStockTrade
}

// FoldStockTransactions replays a stock transaction log in order and returns
// the resulting ledger. The input must already be sorted in fold order
// (date, then creation time); repositories return it that way.
//
// Returns an error naming the offending transaction when a SELL references a
// lot that does not exist (or belongs to another ticker), or tries to deplete
// more shares than the lot has remaining.
func FoldStockTransactions(transactions []model.StockTransaction) (*StockLedger, error) {
	ledger := &StockLedger{
		lotsByID: make(map[string]*model.OpenLot),
	}

	for i := range transactions {
		if err := ledger.apply(&transactions[i]); err != nil {
			return nil, err
		}
	}
	return ledger, nil
}

// apply folds one transaction into the ledger.
func (l *StockLedger) apply(t *model.StockTransaction) error {
	switch t.Type {
	case model.StockBuy:
		l.lotsByID[t.ID] = &model.OpenLot{
			LotID:           t.ID,
			PortfolioID:     t.PortfolioID,
			Ticker:          t.Ticker,
			OriginalShares:  t.Shares,
			RemainingShares: t.Shares,
			CostPerShare:    t.PricePerShare,
			Currency:        t.Currency,
			FxRateToBase:    fxOrOne(t.FxRateToBase),
			PurchaseDate:    t.Date,
		}
		l.lotOrder = append(l.lotOrder, t.ID)
		return nil

	case model.StockSell:
		if t.SourceLotID == "" {
			// Unlinked sell: cash flow only.
			return nil
		}

		lot, ok := l.lotsByID[t.SourceLotID]
		if !ok || lot.Ticker != t.Ticker {
			return fmt.Errorf("transaction %s: lot %s: %w", t.ID, t.SourceLotID, apperrors.ErrLotNotFound)
		}
		if t.Shares > lot.RemainingShares+sharesEpsilon {
			return fmt.Errorf("transaction %s: lot %s has %v shares, sell of %v: %w",
				t.ID, lot.LotID, lot.RemainingShares, t.Shares, apperrors.ErrInsufficientLotShares)
		}

		lot.RemainingShares -= t.Shares
		if lot.RemainingShares < sharesEpsilon {
			lot.RemainingShares = 0
		}

		// Both legs convert at their own locked rate so the realized figure
		// never moves with the live FX table.
		proceeds := t.Shares * t.PricePerShare * fxOrOne(t.FxRateToBase)
		costBasis := t.Shares * lot.CostPerShare * lot.FxRateToBase
		l.realized = append(l.realized, model.RealizedStockTrade{
			TransactionID:    t.ID,
			LotID:            lot.LotID,
			PortfolioID:      t.PortfolioID,
			Ticker:           t.Ticker,
			SharesSold:       t.Shares,
			SaleProceedsBase: proceeds,
			CostBasisBase:    costBasis,
			RealizedGainLoss: proceeds - costBasis,
			Date:             t.Date,
		})
		return nil

	default:
		return fmt.Errorf("transaction %s: unknown type %q: %w", t.ID, t.Type, apperrors.ErrDataInconsistency)
	}
}

// Lot returns the lot opened by the given BUY transaction ID, or nil if it
// never existed.
func (l *StockLedger) Lot(lotID string) *model.OpenLot {
	return l.lotsByID[lotID]
}

// OpenLots returns the lots with shares remaining for one ticker, in purchase
// order.
func (l *StockLedger) OpenLots(ticker string) []model.OpenLot {
	var lots []model.OpenLot
	for _, id := range l.lotOrder {
		lot := l.lotsByID[id]
		if lot.Ticker == ticker && lot.RemainingShares > 0 {
			lots = append(lots, *lot)
		}
	}
	return lots
}

// AllOpenLots returns every lot with shares remaining, in purchase order.
func (l *StockLedger) AllOpenLots() []model.OpenLot {
	var lots []model.OpenLot
	for _, id := range l.lotOrder {
		lot := l.lotsByID[id]
		if lot.RemainingShares > 0 {
			lots = append(lots, *lot)
		}
	}
	return lots
}

// RealizedTrades returns the realized trades in fold order.
func (l *StockLedger) RealizedTrades() []model.RealizedStockTrade {
	return l.realized
}

// Holdings aggregates open lots into per-ticker holdings, sorted by ticker.
// The average cost is the remaining-share weighted mean in the lots' native
// currency; the invested total converts each lot at its locked rate.
func (l *StockLedger) Holdings() []model.Holding {
	byTicker := make(map[string]*model.Holding)
	for _, id := range l.lotOrder {
		lot := l.lotsByID[id]
		if lot.RemainingShares <= 0 {
			continue
		}

		h, ok := byTicker[lot.Ticker]
		if !ok {
			h = &model.Holding{
				PortfolioID: lot.PortfolioID,
				Ticker:      lot.Ticker,
				Currency:    lot.Currency,
			}
			byTicker[lot.Ticker] = h
		}

		// AverageCostPerShare holds the native-currency cost sum until the
		// final division below.
		h.TotalShares += lot.RemainingShares
		h.AverageCostPerShare += lot.RemainingShares * lot.CostPerShare
		h.TotalInvestedBase += lot.RemainingCostBase()
		h.OpenLots++
	}

	holdings := make([]model.Holding, 0, len(byTicker))
	for _, h := range byTicker {
		if h.TotalShares > 0 {
			h.AverageCostPerShare /= h.TotalShares
		}
		holdings = append(holdings, *h)
	}

	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].Ticker < holdings[j].Ticker
	})
	return holdings
}

// Holding returns the aggregated holding for one ticker, or nil when no lot
// has shares remaining.
func (l *StockLedger) Holding(ticker string) *model.Holding {
	for _, h := range l.Holdings() {
		if h.Ticker == ticker {
			return &h
		}
	}
	return nil
}
