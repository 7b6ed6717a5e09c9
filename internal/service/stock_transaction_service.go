package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/deepstock/deepstock-backend/internal/api/request"
	"github.com/deepstock/deepstock-backend/internal/model"
	"github.com/deepstock/deepstock-backend/internal/repository"
	"github.com/deepstock/deepstock-backend/internal/validation"
)

// StockTransactionService handles stock transaction business logic.
//
// Writes follow the ledger's atomicity contract: the transaction is
// validated against a fold of the latest log inside the same database
// transaction that records it, so two concurrent sells cannot both pass the
// lot-depletion check against a stale snapshot.
type StockTransactionService struct {
	stockRepo     *repository.StockTransactionRepository
	portfolioRepo *repository.PortfolioRepository
	marketService *MarketService
}

// NewStockTransactionService creates a new StockTransactionService with the provided dependencies.
func NewStockTransactionService(
	stockRepo *repository.StockTransactionRepository,
	portfolioRepo *repository.PortfolioRepository,
	marketService *MarketService,
) *StockTransactionService {
	return &StockTransactionService{
		stockRepo:     stockRepo,
		portfolioRepo: portfolioRepo,
		marketService: marketService,
	}
}

// GetTransactions retrieves the stock transaction log for a portfolio.
func (s *StockTransactionService) GetTransactions(portfolioID string) ([]model.StockTransaction, error) {
	return s.stockRepo.GetByPortfolio(portfolioID)
}

// GetTransaction retrieves a single stock transaction by ID.
func (s *StockTransactionService) GetTransaction(transactionID string) (*model.StockTransaction, error) {
	return s.stockRepo.GetByID(transactionID)
}

// GetTransactionsInRange retrieves log rows dated within [from, to]; a zero
// bound is open. This filters in SQL and serves the listing endpoint only;
// ledger folds always read the full log.
func (s *StockTransactionService) GetTransactionsInRange(portfolioID string, from, to time.Time) ([]model.StockTransaction, error) {
	return s.stockRepo.GetByDateRange(portfolioID, from, to)
}

// CreateTransaction records a new stock transaction. The FX rate to the base
// currency is locked at creation; when the request leaves it unset, the
// current live rate is locked instead (1 for the base currency).
//
// A SELL naming a source lot is re-checked against the latest ledger inside
// the insert's database transaction and fails with ErrLotNotFound or
// ErrInsufficientLotShares without recording anything.
func (s *StockTransactionService) CreateTransaction(req request.CreateStockTransactionRequest) (*model.StockTransaction, error) {
	if err := validation.ValidateCreateStockTransaction(req); err != nil {
		return nil, err
	}

	if _, err := s.portfolioRepo.GetByID(req.PortfolioID); err != nil {
		return nil, err
	}

	date, err := validation.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	fxRate := req.FxRateToBase
	if fxRate == 0 {
		fxRate = s.marketService.LockRate(req.Currency)
	}

	transaction := &model.StockTransaction{
		ID:            uuid.New().String(),
		PortfolioID:   req.PortfolioID,
		Ticker:        normalizeTicker(req.Ticker),
		Type:          model.StockTransactionType(req.Type),
		Shares:        req.Shares,
		PricePerShare: req.PricePerShare,
		Currency:      req.Currency,
		FxRateToBase:  fxRate,
		Fees:          req.Fees,
		SourceLotID:   req.SourceLotID,
		Date:          date,
		Notes:         req.Notes,
		CreatedAt:     time.Now(),
	}

	tx, err := s.stockRepo.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	log, err := s.stockRepo.GetForUpdate(tx, transaction.PortfolioID)
	if err != nil {
		return nil, err
	}
	ledger, err := FoldStockTransactions(log)
	if err != nil {
		return nil, err
	}
	if err := ledger.apply(transaction); err != nil {
		return nil, err
	}

	if err := s.stockRepo.Insert(tx, transaction); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return transaction, nil
}

// UpdateTransaction applies corrections to a recorded stock transaction and
// re-folds the corrected log before committing. Shrinking a BUY below what
// later SELLs consume, or growing a SELL past its lot, is rejected without
// touching the log.
func (s *StockTransactionService) UpdateTransaction(transactionID string, req request.UpdateStockTransactionRequest) (*model.StockTransaction, error) {
	if err := validation.ValidateUpdateStockTransaction(req); err != nil {
		return nil, err
	}

	transaction, err := s.stockRepo.GetByID(transactionID)
	if err != nil {
		return nil, err
	}

	if req.Shares != nil {
		transaction.Shares = *req.Shares
	}
	if req.PricePerShare != nil {
		transaction.PricePerShare = *req.PricePerShare
	}
	if req.Fees != nil {
		transaction.Fees = *req.Fees
	}
	if req.FxRateToBase != nil {
		transaction.FxRateToBase = *req.FxRateToBase
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

	tx, err := s.stockRepo.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	log, err := s.stockRepo.GetForUpdate(tx, transaction.PortfolioID)
	if err != nil {
		return nil, err
	}
	corrected := spliceStockTransaction(log, transaction)
	if _, err := FoldStockTransactions(corrected); err != nil {
		return nil, fmt.Errorf("cannot update transaction %s: %w", transactionID, err)
	}

	if err := s.stockRepo.Update(tx, transaction); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return transaction, nil
}

// spliceStockTransaction replaces one entry of the log with its corrected
// version and restores fold order, since a corrected date can move the entry.
func spliceStockTransaction(log []model.StockTransaction, updated *model.StockTransaction) []model.StockTransaction {
	corrected := make([]model.StockTransaction, 0, len(log))
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

// DeleteTransaction removes a stock transaction after checking the remaining
// log still folds cleanly without it. Deleting a BUY whose lot a later SELL
// depletes would corrupt the ledger, so that delete is rejected.
func (s *StockTransactionService) DeleteTransaction(transactionID string) error {
	transaction, err := s.stockRepo.GetByID(transactionID)
	if err != nil {
		return err
	}

	tx, err := s.stockRepo.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	log, err := s.stockRepo.GetForUpdate(tx, transaction.PortfolioID)
	if err != nil {
		return err
	}

	remaining := make([]model.StockTransaction, 0, len(log))
	for _, t := range log {
		if t.ID != transactionID {
			remaining = append(remaining, t)
		}
	}
	if _, err := FoldStockTransactions(remaining); err != nil {
		return fmt.Errorf("cannot delete transaction %s: %w", transactionID, err)
	}

	if err := s.stockRepo.Delete(tx, transactionID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetLedger folds the portfolio's full stock log.
func (s *StockTransactionService) GetLedger(portfolioID string) (*StockLedger, error) {
	log, err := s.stockRepo.GetByPortfolio(portfolioID)
	if err != nil {
		return nil, err
	}
	return FoldStockTransactions(log)
}

// GetAvailableLots returns the open lots for one ticker, for explicit lot
// selection on sells and share-consuming option settlements.
func (s *StockTransactionService) GetAvailableLots(portfolioID, ticker string) ([]model.OpenLot, error) {
	ticker = normalizeTicker(ticker)
	log, err := s.stockRepo.GetByPortfolioAndTicker(portfolioID, ticker)
	if err != nil {
		return nil, err
	}
	ledger, err := FoldStockTransactions(log)
	if err != nil {
		return nil, err
	}
	return ledger.OpenLots(ticker), nil
}
