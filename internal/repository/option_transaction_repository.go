package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/deepstock/deepstock-backend/internal/apperrors"
	"github.com/deepstock/deepstock-backend/internal/model"
)

// OptionTransactionRepository provides data access methods for the option_transaction table.
// Like the stock log, reads come back in (date, created_at) order so ledger folds are
// deterministic.
type OptionTransactionRepository struct {
	db *sql.DB
}

// NewOptionTransactionRepository creates a new OptionTransactionRepository with the provided database connection.
func NewOptionTransactionRepository(db *sql.DB) *OptionTransactionRepository {
	return &OptionTransactionRepository{db: db}
}

const optionTransactionColumns = `
	id, portfolio_id, underlying, option_symbol, option_type, strike, expiration,
	action, contracts, premium, currency, fx_rate_to_base, fees,
	consumed_lot_id, linked_stock_transaction_id, date, notes, created_at
`

// GetByPortfolio retrieves the full option transaction log for a portfolio in fold order.
func (r *OptionTransactionRepository) GetByPortfolio(portfolioID string) ([]model.OptionTransaction, error) {
	return r.GetForUpdate(r.db, portfolioID)
}

// GetForUpdate retrieves the full option transaction log through q, so that a
// commit-time ledger re-check reads the same snapshot the insert will join.
func (r *OptionTransactionRepository) GetForUpdate(q Querier, portfolioID string) ([]model.OptionTransaction, error) {
	return queryOptionTransactions(q, `
		SELECT `+optionTransactionColumns+`
		FROM option_transaction
		WHERE portfolio_id = ?
		ORDER BY date ASC, created_at ASC
	`, portfolioID)
}

// GetBySymbol retrieves the option transaction log for one OCC symbol in fold order.
func (r *OptionTransactionRepository) GetBySymbol(portfolioID, optionSymbol string) ([]model.OptionTransaction, error) {
	return queryOptionTransactions(r.db, `
		SELECT `+optionTransactionColumns+`
		FROM option_transaction
		WHERE portfolio_id = ? AND option_symbol = ?
		ORDER BY date ASC, created_at ASC
	`, portfolioID, optionSymbol)
}

// GetByDateRange retrieves option transactions within [startDate, endDate] in fold order.
// A zero startDate or endDate leaves that bound open.
func (r *OptionTransactionRepository) GetByDateRange(portfolioID string, startDate, endDate time.Time) ([]model.OptionTransaction, error) {
	query := `
		SELECT ` + optionTransactionColumns + `
		FROM option_transaction
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

	return queryOptionTransactions(r.db, query, args...)
}

// GetByID retrieves a single option transaction by ID.
// Returns apperrors.ErrOptionTransactionNotFound if no transaction exists with that ID.
func (r *OptionTransactionRepository) GetByID(id string) (*model.OptionTransaction, error) {
	transactions, err := queryOptionTransactions(r.db, `
		SELECT `+optionTransactionColumns+`
		FROM option_transaction
		WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, apperrors.ErrOptionTransactionNotFound
	}
	return &transactions[0], nil
}

// Insert writes an option transaction through q, which may be a *sql.DB or an
// open *sql.Tx when the insert pairs with a linked stock leg.
func (r *OptionTransactionRepository) Insert(q Querier, t *model.OptionTransaction) error {
	var consumedLotID, linkedStockID, notes any
	if t.ConsumedLotID != "" {
		consumedLotID = t.ConsumedLotID
	}
	if t.LinkedStockTransactionID != "" {
		linkedStockID = t.LinkedStockTransactionID
	}
	if t.Notes != "" {
		notes = t.Notes
	}

	_, err := q.Exec(`
		INSERT INTO option_transaction (`+optionTransactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, t.PortfolioID, t.Underlying, t.OptionSymbol, t.OptionType,
		t.Strike, t.Expiration.Format("2006-01-02"),
		t.Action, t.Contracts, t.Premium, t.Currency, t.FxRateToBase, t.Fees,
		consumedLotID, linkedStockID,
		t.Date.Format("2006-01-02"), notes,
		t.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert option transaction: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of an option transaction. Contract
// identity (symbol, action, linkage) never changes in place.
// Returns apperrors.ErrOptionTransactionNotFound if no row was updated.
func (r *OptionTransactionRepository) Update(q Querier, t *model.OptionTransaction) error {
	var notes any
	if t.Notes != "" {
		notes = t.Notes
	}

	result, err := q.Exec(`
		UPDATE option_transaction
		SET contracts = ?, premium = ?, fees = ?, fx_rate_to_base = ?, date = ?, notes = ?
		WHERE id = ?
	`,
		t.Contracts, t.Premium, t.Fees, t.FxRateToBase,
		t.Date.Format("2006-01-02"), notes, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update option transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrOptionTransactionNotFound
	}
	return nil
}

// Delete removes an option transaction.
// Returns apperrors.ErrOptionTransactionNotFound if no row was deleted.
func (r *OptionTransactionRepository) Delete(q Querier, id string) error {
	result, err := q.Exec(`DELETE FROM option_transaction WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete option transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrOptionTransactionNotFound
	}
	return nil
}

// BeginTx starts a database transaction for compound writes.
func (r *OptionTransactionRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

func queryOptionTransactions(q Querier, query string, args ...any) ([]model.OptionTransaction, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query option_transaction table: %w", err)
	}
	defer rows.Close()

	var transactions []model.OptionTransaction
	for rows.Next() {
		var t model.OptionTransaction
		var premium, fxRate sql.NullFloat64
		var consumedLotID, linkedStockID, notes sql.NullString
		var expirationStr, dateStr, createdAtStr string

		err := rows.Scan(
			&t.ID,
			&t.PortfolioID,
			&t.Underlying,
			&t.OptionSymbol,
			&t.OptionType,
			&t.Strike,
			&expirationStr,
			&t.Action,
			&t.Contracts,
			&premium,
			&t.Currency,
			&fxRate,
			&t.Fees,
			&consumedLotID,
			&linkedStockID,
			&dateStr,
			&notes,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan option_transaction table results: %w", err)
		}

		if premium.Valid {
			v := premium.Float64
			t.Premium = &v
		}
		if fxRate.Valid {
			v := fxRate.Float64
			t.FxRateToBase = &v
		}
		t.ConsumedLotID = consumedLotID.String
		t.LinkedStockTransactionID = linkedStockID.String
		t.Notes = notes.String

		t.Expiration, err = ParseTime(expirationStr)
		if err != nil || t.Expiration.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

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
		return nil, fmt.Errorf("error iterating option_transaction table: %w", err)
	}

	return transactions, nil
}
