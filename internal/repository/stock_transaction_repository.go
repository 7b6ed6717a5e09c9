package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/deepstock/deepstock-backend/internal/apperrors"
	"github.com/deepstock/deepstock-backend/internal/model"
)

// StockTransactionRepository provides data access methods for the stock_transaction table.
// The transaction log is append-ordered by (date, created_at) so that folds over it are
// deterministic; every read method preserves that ordering.
type StockTransactionRepository struct {
	db *sql.DB
}

// NewStockTransactionRepository creates a new StockTransactionRepository with the provided database connection.
func NewStockTransactionRepository(db *sql.DB) *StockTransactionRepository {
	return &StockTransactionRepository{db: db}
}

const stockTransactionColumns = `
	id, portfolio_id, ticker, type, shares, price_per_share,
	currency, fx_rate_to_base, fees, source_lot_id, date, notes, created_at
`

// GetByPortfolio retrieves the full stock transaction log for a portfolio in fold order.
func (r *StockTransactionRepository) GetByPortfolio(portfolioID string) ([]model.StockTransaction, error) {
	return r.GetForUpdate(r.db, portfolioID)
}

// GetForUpdate retrieves the full stock transaction log through q, so that a
// commit-time ledger re-check reads the same snapshot the insert will join.
func (r *StockTransactionRepository) GetForUpdate(q Querier, portfolioID string) ([]model.StockTransaction, error) {
	return queryStockTransactions(q, `
		SELECT `+stockTransactionColumns+`
		FROM stock_transaction
		WHERE portfolio_id = ?
		ORDER BY date ASC, created_at ASC
	`, portfolioID)
}

// GetByPortfolioAndTicker retrieves the stock transaction log for one ticker in fold order.
func (r *StockTransactionRepository) GetByPortfolioAndTicker(portfolioID, ticker string) ([]model.StockTransaction, error) {
	return queryStockTransactions(r.db, `
		SELECT `+stockTransactionColumns+`
		FROM stock_transaction
		WHERE portfolio_id = ? AND ticker = ?
		ORDER BY date ASC, created_at ASC
	`, portfolioID, ticker)
}

// GetByDateRange retrieves stock transactions within [startDate, endDate] in fold order.
// A zero startDate or endDate leaves that bound open.
func (r *StockTransactionRepository) GetByDateRange(portfolioID string, startDate, endDate time.Time) ([]model.StockTransaction, error) {
	query := `
		SELECT ` + stockTransactionColumns + `
		FROM stock_transaction
		WHERE portfolio_id = ?
	`
	args := []any{portfolioID}
	if !startDate.IsZero() {
		query += " AND date >= ?"
		args = append(args, startDate.Format("2006-01-02"))
	}
	if !endDate.IsZero() {
		query += " AND date <= ?"
		args = append(args, endDate.Format("2006-01-02"))
	}
	query += " ORDER BY date ASC, created_at ASC"

	return queryStockTransactions(r.db, query, args...)
}

// GetByID retrieves a single stock transaction by ID.
// Returns apperrors.ErrTransactionNotFound if no transaction exists with that ID.
func (r *StockTransactionRepository) GetByID(id string) (*model.StockTransaction, error) {
	transactions, err := queryStockTransactions(r.db, `
		SELECT `+stockTransactionColumns+`
		FROM stock_transaction
		WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, apperrors.ErrTransactionNotFound
	}
	return &transactions[0], nil
}

// Insert writes a stock transaction through q, which may be a *sql.DB or an
// open *sql.Tx when the insert is one leg of a compound write.
func (r *StockTransactionRepository) Insert(q Querier, t *model.StockTransaction) error {
	var sourceLotID any
	if t.SourceLotID != "" {
		sourceLotID = t.SourceLotID
	}

	_, err := q.Exec(`
		INSERT INTO stock_transaction (`+stockTransactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, t.PortfolioID, t.Ticker, t.Type, t.Shares, t.PricePerShare,
		t.Currency, t.FxRateToBase, t.Fees, sourceLotID,
		t.Date.Format("2006-01-02"), t.Notes,
		t.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert stock transaction: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of a stock transaction. Identity
// columns (portfolio, ticker, type, lot linkage) never change in place.
// Returns apperrors.ErrTransactionNotFound if no row was updated.
func (r *StockTransactionRepository) Update(q Querier, t *model.StockTransaction) error {
	result, err := q.Exec(`
		UPDATE stock_transaction
		SET shares = ?, price_per_share = ?, fees = ?, fx_rate_to_base = ?, date = ?, notes = ?
		WHERE id = ?
	`,
		t.Shares, t.PricePerShare, t.Fees, t.FxRateToBase,
		t.Date.Format("2006-01-02"), t.Notes, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update stock transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// Delete removes a stock transaction.
// Returns apperrors.ErrTransactionNotFound if no row was deleted.
func (r *StockTransactionRepository) Delete(q Querier, id string) error {
	result, err := q.Exec(`DELETE FROM stock_transaction WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stock transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// BeginTx starts a database transaction for compound writes.
func (r *StockTransactionRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

func queryStockTransactions(q Querier, query string, args ...any) ([]model.StockTransaction, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock_transaction table: %w", err)
	}
	defer rows.Close()

	var transactions []model.StockTransaction
	for rows.Next() {
		var t model.StockTransaction
		var sourceLotID, notes sql.NullString
		var dateStr, createdAtStr string

		err := rows.Scan(
			&t.ID,
			&t.PortfolioID,
			&t.Ticker,
			&t.Type,
			&t.Shares,
			&t.PricePerShare,
			&t.Currency,
			&t.FxRateToBase,
			&t.Fees,
			&sourceLotID,
			&dateStr,
			&notes,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock_transaction table results: %w", err)
		}
		t.SourceLotID = sourceLotID.String
		t.Notes = notes.String

		t.Date, err = ParseTime(dateStr)
		if err != nil || t.Date.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		t.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil || t.CreatedAt.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock_transaction table: %w", err)
	}

	return transactions, nil
}
