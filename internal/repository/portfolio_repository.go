package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/deepstock/deepstock-backend/internal/apperrors"
	"github.com/deepstock/deepstock-backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// GetAll retrieves all portfolios ordered by name.
func (r *PortfolioRepository) GetAll() ([]model.Portfolio, error) {
	rows, err := r.db.Query(`
		SELECT id, name, description, currency, created_at
		FROM portfolio
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	var portfolios []model.Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	return portfolios, nil
}

// GetByID retrieves a single portfolio by ID.
// Returns apperrors.ErrPortfolioNotFound if no portfolio exists with that ID.
func (r *PortfolioRepository) GetByID(id string) (*model.Portfolio, error) {
	row := r.db.QueryRow(`
		SELECT id, name, description, currency, created_at
		FROM portfolio
		WHERE id = ?
	`, id)

	p, err := scanPortfolio(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrPortfolioNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a new portfolio.
func (r *PortfolioRepository) Create(p *model.Portfolio) error {
	_, err := r.db.Exec(`
		INSERT INTO portfolio (id, name, description, currency, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.Currency, p.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}

// Update modifies an existing portfolio's name, description, and currency.
// Returns apperrors.ErrPortfolioNotFound if no row was updated.
func (r *PortfolioRepository) Update(p *model.Portfolio) error {
	result, err := r.db.Exec(`
		UPDATE portfolio
		SET name = ?, description = ?, currency = ?
		WHERE id = ?
	`, p.Name, p.Description, p.Currency, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrPortfolioNotFound
	}
	return nil
}

// Delete removes a portfolio and, through foreign keys, its transactions.
// Returns apperrors.ErrPortfolioNotFound if no row was deleted.
func (r *PortfolioRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM portfolio WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrPortfolioNotFound
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanPortfolio(s scanner) (model.Portfolio, error) {
	var p model.Portfolio
	var description sql.NullString
	var createdAtStr string

	err := s.Scan(&p.ID, &p.Name, &description, &p.Currency, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Portfolio{}, err
		}
		return model.Portfolio{}, fmt.Errorf("failed to scan portfolio table results: %w", err)
	}
	p.Description = description.String

	p.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to parse date: %w", err)
	}
	return p, nil
}
