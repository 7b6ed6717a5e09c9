package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/deepstock/deepstock-backend/internal/api/request"
	"github.com/deepstock/deepstock-backend/internal/apperrors"
	"github.com/deepstock/deepstock-backend/internal/model"
	"github.com/deepstock/deepstock-backend/internal/occ"
	"github.com/deepstock/deepstock-backend/internal/repository"
	"github.com/deepstock/deepstock-backend/internal/validation"
)

// OptionTransactionService handles option transaction business logic.
//
// ASSIGNMENT and EXERCISE are compound transactions: the option leg plus a
// linked stock leg that trades contracts x 100 shares. Both legs are
// validated against folds of the latest logs and inserted inside one
// database transaction, so either the whole settlement is recorded or none
// of it is.
type OptionTransactionService struct {
	optionRepo    *repository.OptionTransactionRepository
	stockRepo     *repository.StockTransactionRepository
	portfolioRepo *repository.PortfolioRepository
	marketService *MarketService
}

// NewOptionTransactionService creates a new OptionTransactionService with the provided dependencies.
func NewOptionTransactionService(
	optionRepo *repository.OptionTransactionRepository,
	stockRepo *repository.StockTransactionRepository,
	portfolioRepo *repository.PortfolioRepository,
	marketService *MarketService,
) *OptionTransactionService {
	return &OptionTransactionService{
		optionRepo:    optionRepo,
		stockRepo:     stockRepo,
		portfolioRepo: portfolioRepo,
		marketService: marketService,
	}
}

// GetTransactions retrieves the option transaction log for a portfolio.
func (s *OptionTransactionService) GetTransactions(portfolioID string) ([]model.OptionTransaction, error) {
	return s.optionRepo.GetByPortfolio(portfolioID)
}

// GetTransaction retrieves a single option transaction by ID.
func (s *OptionTransactionService) GetTransaction(transactionID string) (*model.OptionTransaction, error) {
	return s.optionRepo.GetByID(transactionID)
}

// GetTransactionsInRange retrieves log rows dated within [from, to]; a zero
// bound is open. Listing only; ledger folds always read the full log.
func (s *OptionTransactionService) GetTransactionsInRange(portfolioID string, from, to time.Time) ([]model.OptionTransaction, error) {
	return s.optionRepo.GetByDateRange(portfolioID, from, to)
}

// CreateTransaction records a new option transaction. The OCC symbol is
// derived from the contract fields; the action's legality is decided against
// a fold of the latest option log inside the insert's database transaction.
//
// For ASSIGNMENT and EXERCISE the linked stock leg is built from the
// position's state (see stockLegFor) and committed together with the option
// leg. Returns the recorded option transaction and, for compound actions,
// the linked stock transaction.
func (s *OptionTransactionService) CreateTransaction(req request.CreateOptionTransactionRequest) (*model.OptionTransaction, *model.StockTransaction, error) {
	if err := validation.ValidateCreateOptionTransaction(req); err != nil {
		return nil, nil, err
	}

	if _, err := s.portfolioRepo.GetByID(req.PortfolioID); err != nil {
		return nil, nil, err
	}

	date, err := validation.ParseDate(req.Date)
	if err != nil {
		return nil, nil, err
	}
	expiration, err := validation.ParseDate(req.Expiration)
	if err != nil {
		return nil, nil, err
	}

	optionType := model.OptionType(req.OptionType)
	underlying := normalizeTicker(req.Underlying)

	fxRate := req.FxRateToBase
	if fxRate == nil || *fxRate == 0 {
		locked := s.marketService.LockRate(req.Currency)
		fxRate = &locked
	}

	transaction := &model.OptionTransaction{
		ID:            uuid.New().String(),
		PortfolioID:   req.PortfolioID,
		Underlying:    underlying,
		OptionSymbol:  occ.Encode(underlying, expiration, optionType, req.Strike),
		OptionType:    optionType,
		Strike:        req.Strike,
		Expiration:    expiration,
		Action:        model.OptionAction(req.Action),
		Contracts:     req.Contracts,
		Premium:       req.Premium,
		Currency:      req.Currency,
		FxRateToBase:  fxRate,
		Fees:          req.Fees,
		ConsumedLotID: req.ConsumedLotID,
		Date:          date,
		Notes:         req.Notes,
		CreatedAt:     time.Now(),
	}

	tx, err := s.optionRepo.BeginTx()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	optionLog, err := s.optionRepo.GetForUpdate(tx, transaction.PortfolioID)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := FoldOptionTransactions(optionLog)
	if err != nil {
		return nil, nil, err
	}

	// The premium average feeds the settlement price, so capture it before
	// the apply below can end the stream.
	avgPremium := ledger.AveragePremium(transaction.OptionSymbol)

	if err := ledger.apply(transaction); err != nil {
		return nil, nil, err
	}

	var stockLeg *model.StockTransaction
	if transaction.Action == model.Assignment || transaction.Action == model.Exercise {
		stockLeg, err = s.stockLegFor(transaction, avgPremium)
		if err != nil {
			return nil, nil, err
		}

		stockLog, err := s.stockRepo.GetForUpdate(tx, transaction.PortfolioID)
		if err != nil {
			return nil, nil, err
		}
		stockLedger, err := FoldStockTransactions(stockLog)
		if err != nil {
			return nil, nil, err
		}
		if err := stockLedger.apply(stockLeg); err != nil {
			return nil, nil, err
		}

		if err := s.stockRepo.Insert(tx, stockLeg); err != nil {
			return nil, nil, err
		}
		transaction.LinkedStockTransactionID = stockLeg.ID
	}

	if err := s.optionRepo.Insert(tx, transaction); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return transaction, stockLeg, nil
}

// stockLegFor builds the stock side of a settlement:
//   - short call ASSIGNMENT sells shares from the named lot at strike plus
//     the average premium
//   - short put ASSIGNMENT buys shares into a new lot at strike minus the
//     average premium
//   - EXERCISE trades at the plain strike (the premium is already sunk),
//     buying for calls and selling the named lot for puts
//
// Share-selling settlements require an explicit consumedLotId; lot selection
// is never automatic.
func (s *OptionTransactionService) stockLegFor(t *model.OptionTransaction, avgPremium float64) (*model.StockTransaction, error) {
	shares := float64(t.Contracts * model.ContractMultiplier)

	var stockType model.StockTransactionType
	var price float64
	var sourceLotID string

	switch {
	case t.Action == model.Assignment && t.OptionType == model.Call:
		stockType = model.StockSell
		price = t.Strike + avgPremium
		sourceLotID = t.ConsumedLotID
	case t.Action == model.Assignment && t.OptionType == model.Put:
		stockType = model.StockBuy
		price = t.Strike - avgPremium
	case t.Action == model.Exercise && t.OptionType == model.Call:
		stockType = model.StockBuy
		price = t.Strike
	case t.Action == model.Exercise && t.OptionType == model.Put:
		stockType = model.StockSell
		price = t.Strike
		sourceLotID = t.ConsumedLotID
	}

	if stockType == model.StockSell && sourceLotID == "" {
		return nil, fmt.Errorf("%s %s of %s: %w", t.Action, t.OptionType, t.OptionSymbol, apperrors.ErrLotSelectionRequired)
	}

	return &model.StockTransaction{
		ID:            uuid.New().String(),
		PortfolioID:   t.PortfolioID,
		Ticker:        t.Underlying,
		Type:          stockType,
		Shares:        shares,
		PricePerShare: price,
		Currency:      t.Currency,
		FxRateToBase:  t.FxRateValue(),
		SourceLotID:   sourceLotID,
		Date:          t.Date,
		Notes:         fmt.Sprintf("%s settlement of %s", t.Action, t.OptionSymbol),
		CreatedAt:     t.CreatedAt,
	}, nil
}

// ClosePosition closes an open option position in one step, deriving the
// closing action from the position's side: BTC for long streams, STC for
// short ones. A zero contract count closes the full position.
func (s *OptionTransactionService) ClosePosition(portfolioID, optionSymbol string, req request.ClosePositionRequest) (*model.OptionTransaction, error) {
	if err := validation.ValidateClosePosition(req); err != nil {
		return nil, err
	}

	log, err := s.optionRepo.GetBySymbol(portfolioID, optionSymbol)
	if err != nil {
		return nil, err
	}
	ledger, err := FoldOptionTransactions(log)
	if err != nil {
		return nil, err
	}

	holding := ledger.Holding(optionSymbol)
	if holding == nil {
		return nil, apperrors.ErrOptionPositionNotFound
	}

	action := "BTC"
	if holding.Position == model.Short {
		action = "STC"
	}

	contracts := req.Contracts
	if contracts == 0 {
		contracts = holding.OpenContracts
	}

	premium := req.Premium
	transaction, _, err := s.CreateTransaction(request.CreateOptionTransactionRequest{
		PortfolioID:  portfolioID,
		Underlying:   holding.Underlying,
		OptionType:   string(holding.OptionType),
		Strike:       holding.Strike,
		Expiration:   holding.Expiration.Format("2006-01-02"),
		Action:       action,
		Contracts:    contracts,
		Premium:      &premium,
		Currency:     holding.Currency,
		FxRateToBase: req.FxRateToBase,
		Fees:         req.Fees,
		Date:         req.Date,
		Notes:        req.Notes,
	})
	return transaction, err
}

// UpdateTransaction applies corrections to a recorded option transaction and
// re-folds the corrected log before committing. Corrections that would make
// a later leg illegal (closing more contracts than remain open) are rejected
// without touching the log. Premium corrections are only legal on actions
// that carry one.
func (s *OptionTransactionService) UpdateTransaction(transactionID string, req request.UpdateOptionTransactionRequest) (*model.OptionTransaction, error) {
	if err := validation.ValidateUpdateOptionTransaction(req); err != nil {
		return nil, err
	}

	transaction, err := s.optionRepo.GetByID(transactionID)
	if err != nil {
		return nil, err
	}

	if req.Premium != nil && !transaction.Action.RequiresPremium() {
		return nil, &validation.Error{Fields: map[string]string{
			"premiumPerContract": fmt.Sprintf("premiumPerContract is not allowed for %s", transaction.Action),
		}}
	}
	// The linked stock leg's share count derives from contracts, so a
	// contracts correction on a settled transaction would desync the pair.
	if req.Contracts != nil && transaction.LinkedStockTransactionID != "" {
		return nil, &validation.Error{Fields: map[string]string{
			"contracts": "contracts cannot be corrected on a settlement; delete and re-record it",
		}}
	}

	if req.Contracts != nil {
		transaction.Contracts = *req.Contracts
	}
	if req.Premium != nil {
		transaction.Premium = req.Premium
	}
	if req.Fees != nil {
		transaction.Fees = *req.Fees
	}
	if req.FxRateToBase != nil {
		transaction.FxRateToBase = req.FxRateToBase
	}
	if req.Date != nil {
		date, err := validation.ParseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		transaction.Date = date
	}
	if req.Notes != nil {
		transaction.Notes = *req.Notes
	}

	tx, err := s.optionRepo.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	log, err := s.optionRepo.GetForUpdate(tx, transaction.PortfolioID)
	if err != nil {
		return nil, err
	}
	corrected := spliceOptionTransaction(log, transaction)
	if _, err := FoldOptionTransactions(corrected); err != nil {
		return nil, fmt.Errorf("cannot update transaction %s: %w", transactionID, err)
	}

	if err := s.optionRepo.Update(tx, transaction); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return transaction, nil
}

// spliceOptionTransaction replaces one entry of the log with its corrected
// version and restores fold order, since a corrected date can move the entry.
func spliceOptionTransaction(log []model.OptionTransaction, updated *model.OptionTransaction) []model.OptionTransaction {
	corrected := make([]model.OptionTransaction, 0, len(log))
	for _, t := range log {
		if t.ID == updated.ID {
			corrected = append(corrected, *updated)
		} else {
			corrected = append(corrected, t)
		}
	}
	sort.SliceStable(corrected, func(i, j int) bool {
		if !corrected[i].Date.Equal(corrected[j].Date) {
			return corrected[i].Date.Before(corrected[j].Date)
		}
		return corrected[i].CreatedAt.Before(corrected[j].CreatedAt)
	})
	return corrected
}

// DeleteTransaction removes an option transaction together with its linked
// stock leg, if any, after checking both remaining logs still fold cleanly.
func (s *OptionTransactionService) DeleteTransaction(transactionID string) error {
	transaction, err := s.optionRepo.GetByID(transactionID)
	if err != nil {
		return err
	}

	tx, err := s.optionRepo.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	optionLog, err := s.optionRepo.GetForUpdate(tx, transaction.PortfolioID)
	if err != nil {
		return err
	}
	remaining := make([]model.OptionTransaction, 0, len(optionLog))
	for _, t := range optionLog {
		if t.ID != transactionID {
			remaining = append(remaining, t)
		}
	}
	if _, err := FoldOptionTransactions(remaining); err != nil {
		return fmt.Errorf("cannot delete transaction %s: %w", transactionID, err)
	}

	if transaction.LinkedStockTransactionID != "" {
		stockLog, err := s.stockRepo.GetForUpdate(tx, transaction.PortfolioID)
		if err != nil {
			return err
		}
		remainingStock := make([]model.StockTransaction, 0, len(stockLog))
		for _, t := range stockLog {
			if t.ID != transaction.LinkedStockTransactionID {
				remainingStock = append(remainingStock, t)
			}
		}
		if _, err := FoldStockTransactions(remainingStock); err != nil {
			return fmt.Errorf("cannot delete transaction %s: %w", transactionID, err)
		}
	}

	if err := s.optionRepo.Delete(tx, transactionID); err != nil {
		return err
	}
	if transaction.LinkedStockTransactionID != "" {
		if err := s.stockRepo.Delete(tx, transaction.LinkedStockTransactionID); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetLedger folds the portfolio's full option log.
func (s *OptionTransactionService) GetLedger(portfolioID string) (*OptionLedger, error) {
	log, err := s.optionRepo.GetByPortfolio(portfolioID)
	if err != nil {
		return nil, err
	}
	return FoldOptionTransactions(log)
}

// GetPositions returns the open option positions with live metrics attached.
func (s *OptionTransactionService) GetPositions(portfolioID string) ([]model.OptionHoldingMetrics, error) {
	ledger, err := s.GetLedger(portfolioID)
	if err != nil {
		return nil, err
	}

	quotes, err := s.marketService.GetQuotes()
	if err != nil {
		return nil, err
	}

	holdings := ledger.Holdings()
	metrics := make([]model.OptionHoldingMetrics, 0, len(holdings))
	for _, h := range holdings {
		var price float64
		if q, ok := quotes[h.Underlying]; ok {
			price = q.Price
		}
		metrics = append(metrics, ValueOptionHolding(h, price, 0))
	}
	return metrics, nil
}

// GetStats summarizes the portfolio's open option positions.
func (s *OptionTransactionService) GetStats(portfolioID string) (model.OptionStats, error) {
	ledger, err := s.GetLedger(portfolioID)
	if err != nil {
		return model.OptionStats{}, err
	}

	quotes, err := s.marketService.GetQuotes()
	if err != nil {
		return model.OptionStats{}, err
	}

	return ComputeOptionStats(ledger.Holdings(), quotes, time.Now()), nil
}
