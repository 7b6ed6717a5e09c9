package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/deepstock/deepstock-backend/internal/apperrors"
	"github.com/deepstock/deepstock-backend/internal/model"
)

// OptionLedger is the materialized state of an option transaction log: one
// position stream per OCC symbol, tracked as a signed net contract count
// (positive long, negative short), plus the realized legs produced by
// closing actions. Like the stock ledger it is rebuilt by folding the log
// and never stored.
//
// Stream rules:
//   - BTO extends a long stream (net ≥ 0), STO extends a short stream (net ≤ 0).
//   - STC closes short contracts, BTC closes long contracts; neither may
//     close more than the stream holds.
//   - EXPIRATION zeroes out contracts: a long stream loses its paid premium,
//     a short stream keeps its received premium.
//   - ASSIGNMENT (short only) and EXERCISE (long only) close contracts with
//     a fee-only option P/L; their share economics live in the linked stock
//     transaction.
//   - When net returns to zero the stream ends; the next opening action
//     starts a fresh stream under the same symbol with a fresh premium
//     average and fee total.
//
// averagePremiumPerContract is the contracts-weighted mean of the current
// stream's opening premiums only; closes are netted against it, never
// blended into it.
type OptionLedger struct {
	streams     map[string]*optionStream
	symbolOrder []string
	realized    []model.RealizedOptionLeg
}

// optionStream is the in-progress state for one OCC symbol.
type optionStream struct {
	portfolioID string
	symbol      string
	underlying  string
	optionType  model.OptionType
	strike      float64
	expiration  time.Time
	currency    string

	net             int     // signed open contracts
	openedContracts int     // opening contracts of the current stream
	openedPremium   float64 // premium × contracts summed over those opens
	totalFees       float64
	firstDate       time.Time
	lastDate        time.Time
}

func (s *optionStream) avgPremium() float64 {
	if s.openedContracts == 0 {
		return 0
	}
	return s.openedPremium / float64(s.openedContracts)
}

// reset clears per-stream accumulators once net returns to zero.
func (s *optionStream) reset() {
	s.openedContracts = 0
	s.openedPremium = 0
	s.totalFees = 0
	s.firstDate = time.Time{}
}

// FoldOptionTransactions replays an option transaction log in order and
// returns the resulting ledger. The input must already be sorted in fold
// order (date, then creation time).
//
// Returns an error naming the offending transaction when an action is not
// legal for its stream's current state (wrapping
// apperrors.ErrInvalidPositionTransition).
func FoldOptionTransactions(transactions []model.OptionTransaction) (*OptionLedger, error) {
	ledger := &OptionLedger{
		streams: make(map[string]*optionStream),
	}

	for i := range transactions {
		if err := ledger.apply(&transactions[i]); err != nil {
			return nil, err
		}
	}
	return ledger, nil
}

// apply folds one transaction into its symbol's stream.
func (l *OptionLedger) apply(t *model.OptionTransaction) error {
	s, ok := l.streams[t.OptionSymbol]
	if !ok {
		s = &optionStream{
			portfolioID: t.PortfolioID,
			symbol:      t.OptionSymbol,
			underlying:  t.Underlying,
			optionType:  t.OptionType,
			strike:      t.Strike,
			expiration:  t.Expiration,
			currency:    t.Currency,
		}
		l.streams[t.OptionSymbol] = s
		l.symbolOrder = append(l.symbolOrder, t.OptionSymbol)
	}

	if s.firstDate.IsZero() {
		s.firstDate = t.Date
	}
	s.lastDate = t.Date
	s.totalFees += t.Fees

	mult := float64(model.ContractMultiplier)
	c := t.Contracts
	fx := t.FxRateValue()

	switch t.Action {
	case model.BuyToOpen:
		if s.net < 0 {
			return transitionErr(t, "BTO on a short position")
		}
		s.openedContracts += c
		s.openedPremium += t.PremiumValue() * float64(c)
		s.net += c
		return nil

	case model.SellToOpen:
		if s.net > 0 {
			return transitionErr(t, "STO on a long position")
		}
		s.openedContracts += c
		s.openedPremium += t.PremiumValue() * float64(c)
		s.net -= c
		return nil

	case model.SellToClose:
		if s.net >= 0 {
			return transitionErr(t, "STC without a short position")
		}
		if c > -s.net {
			return transitionErr(t, fmt.Sprintf("STC of %d contracts against %d open", c, -s.net))
		}
		gross := (t.PremiumValue() - s.avgPremium()) * float64(c) * mult
		l.realize(t, (gross-t.Fees)*fx)
		s.net += c

	case model.BuyToClose:
		if s.net <= 0 {
			return transitionErr(t, "BTC without a long position")
		}
		if c > s.net {
			return transitionErr(t, fmt.Sprintf("BTC of %d contracts against %d open", c, s.net))
		}
		gross := (s.avgPremium() - t.PremiumValue()) * float64(c) * mult
		l.realize(t, (gross-t.Fees)*fx)
		s.net -= c

	case model.Expiration:
		switch {
		case s.net > 0:
			if c > s.net {
				return transitionErr(t, fmt.Sprintf("expiration of %d contracts against %d open", c, s.net))
			}
			// Long side forfeits the paid premium.
			l.realize(t, (-s.avgPremium()*float64(c)*mult-t.Fees)*fx)
			s.net -= c
		case s.net < 0:
			if c > -s.net {
				return transitionErr(t, fmt.Sprintf("expiration of %d contracts against %d open", c, -s.net))
			}
			// Short side keeps the received premium.
			l.realize(t, (s.avgPremium()*float64(c)*mult-t.Fees)*fx)
			s.net += c
		default:
			return transitionErr(t, "expiration without an open position")
		}

	case model.Assignment:
		if s.net >= 0 {
			return transitionErr(t, "assignment on a non-short position")
		}
		if c > -s.net {
			return transitionErr(t, fmt.Sprintf("assignment of %d contracts against %d open", c, -s.net))
		}
		// Strike-vs-premium economics live on the linked stock transaction;
		// the option leg carries fees only.
		l.realize(t, -t.Fees*fx)
		s.net += c

	case model.Exercise:
		if s.net <= 0 {
			return transitionErr(t, "exercise on a non-long position")
		}
		if c > s.net {
			return transitionErr(t, fmt.Sprintf("exercise of %d contracts against %d open", c, s.net))
		}
		l.realize(t, -t.Fees*fx)
		s.net -= c

	default:
		return fmt.Errorf("transaction %s: unknown action %q: %w", t.ID, t.Action, apperrors.ErrDataInconsistency)
	}

	if s.net == 0 {
		s.reset()
	}
	return nil
}

func (l *OptionLedger) realize(t *model.OptionTransaction, gainLoss float64) {
	l.realized = append(l.realized, model.RealizedOptionLeg{
		TransactionID:    t.ID,
		OptionSymbol:     t.OptionSymbol,
		PortfolioID:      t.PortfolioID,
		Action:           t.Action,
		Contracts:        t.Contracts,
		RealizedGainLoss: gainLoss,
		Date:             t.Date,
	})
}

func transitionErr(t *model.OptionTransaction, detail string) error {
	return fmt.Errorf("transaction %s (%s): %s: %w",
		t.ID, t.OptionSymbol, detail, apperrors.ErrInvalidPositionTransition)
}

// NetContracts returns the signed open contract count for a symbol, zero if
// the symbol has no open stream.
func (l *OptionLedger) NetContracts(symbol string) int {
	if s, ok := l.streams[symbol]; ok {
		return s.net
	}
	return 0
}

// AveragePremium returns the current stream's average opening premium per
// contract for a symbol, zero if the symbol has no open stream.
func (l *OptionLedger) AveragePremium(symbol string) float64 {
	if s, ok := l.streams[symbol]; ok {
		return s.avgPremium()
	}
	return 0
}

// RealizedLegs returns the realized option legs in fold order, in base
// currency at each closing transaction's locked rate.
func (l *OptionLedger) RealizedLegs() []model.RealizedOptionLeg {
	return l.realized
}

// Holdings returns the open option positions, sorted by OCC symbol.
func (l *OptionLedger) Holdings() []model.OptionHolding {
	var holdings []model.OptionHolding
	for _, symbol := range l.symbolOrder {
		s := l.streams[symbol]
		if s.net == 0 {
			continue
		}

		position := model.Long
		open := s.net
		if s.net < 0 {
			position = model.Short
			open = -s.net
		}

		holdings = append(holdings, model.OptionHolding{
			PortfolioID:           s.portfolioID,
			OptionSymbol:          s.symbol,
			Underlying:            s.underlying,
			OptionType:            s.optionType,
			Strike:                s.strike,
			Expiration:            s.expiration,
			Position:              position,
			OpenContracts:         open,
			AvgPremiumPerContract: s.avgPremium(),
			Currency:              s.currency,
			TotalFeesPaid:         s.totalFees,
			FirstTransactionDate:  s.firstDate,
			LastTransactionDate:   s.lastDate,
		})
	}

	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].OptionSymbol < holdings[j].OptionSymbol
	})
	return holdings
}

// Holding returns the open position for one symbol, or nil when the symbol
// has no open contracts.
func (l *OptionLedger) Holding(symbol string) *model.OptionHolding {
	for _, h := range l.Holdings() {
		if h.OptionSymbol == symbol {
			return &h
		}
	}
	return nil
}
