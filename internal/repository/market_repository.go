package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/deepstock/deepstock-backend/internal/apperrors"
	"github.com/deepstock/deepstock-backend/internal/model"
)

// MarketRepository provides data access for cached market data: latest stock
// quotes, latest option quotes, and exchange rates against the base currency.
// Rows are upserted on refresh; the tables hold only the latest observation.
type MarketRepository struct {
	db *sql.DB
}

// NewMarketRepository creates a new MarketRepository with the provided database connection.
func NewMarketRepository(db *sql.DB) *MarketRepository {
	return &MarketRepository{db: db}
}

// UpsertQuote stores the latest quote for a ticker.
func (r *MarketRepository) UpsertQuote(q *model.Quote) error {
	_, err := r.db.Exec(`
		INSERT INTO quote (ticker, price, change, currency, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			price = excluded.price,
			change = excluded.change,
			currency = excluded.currency,
			updated_at = excluded.updated_at
	`, q.Ticker, q.Price, q.Change, q.Currency, q.UpdatedAt.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return fmt.Errorf("failed to upsert quote: %w", err)
	}
	return nil
}

// GetQuotes retrieves cached quotes keyed by ticker.
func (r *MarketRepository) GetQuotes() (map[string]model.Quote, error) {
	rows, err := r.db.Query(`SELECT ticker, price, change, currency, updated_at FROM quote`)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote table: %w", err)
	}
	defer rows.Close()

	quotes := make(map[string]model.Quote)
	for rows.Next() {
		var q model.Quote
		var updatedAtStr string
		if err := rows.Scan(&q.Ticker, &q.Price, &q.Change, &q.Currency, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan quote table results: %w", err)
		}
		q.UpdatedAt, err = ParseTime(updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		quotes[q.Ticker] = q
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quote table: %w", err)
	}
	return quotes, nil
}

// UpsertOptionQuote stores the latest quote for an OCC option symbol.
func (r *MarketRepository) UpsertOptionQuote(q *model.OptionQuote) error {
	_, err := r.db.Exec(`
		INSERT INTO option_quote (option_symbol, price, bid, ask, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(option_symbol) DO UPDATE SET
			price = excluded.price,
			bid = excluded.bid,
			ask = excluded.ask,
			updated_at = excluded.updated_at
	`, q.OptionSymbol, q.Price, q.Bid, q.Ask, q.UpdatedAt.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return fmt.Errorf("failed to upsert option quote: %w", err)
	}
	return nil
}

// GetOptionQuotes retrieves cached option quotes keyed by OCC symbol.
func (r *MarketRepository) GetOptionQuotes() (map[string]model.OptionQuote, error) {
	rows, err := r.db.Query(`SELECT option_symbol, price, bid, ask, updated_at FROM option_quote`)
	if err != nil {
		return nil, fmt.Errorf("failed to query option_quote table: %w", err)
	}
	defer rows.Close()

	quotes := make(map[string]model.OptionQuote)
	for rows.Next() {
		var q model.OptionQuote
		var updatedAtStr string
		if err := rows.Scan(&q.OptionSymbol, &q.Price, &q.Bid, &q.Ask, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan option_quote table results: %w", err)
		}
		q.UpdatedAt, err = ParseTime(updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		quotes[q.OptionSymbol] = q
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating option_quote table: %w", err)
	}
	return quotes, nil
}

// UpsertExchangeRate stores the latest rate from a currency to the base currency.
func (r *MarketRepository) UpsertExchangeRate(rate *model.ExchangeRate) error {
	_, err := r.db.Exec(`
		INSERT INTO exchange_rate (currency, rate, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(currency) DO UPDATE SET
			rate = excluded.rate,
			updated_at = excluded.updated_at
	`, rate.Currency, rate.Rate, rate.UpdatedAt.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return fmt.Errorf("failed to upsert exchange rate: %w", err)
	}
	return nil
}

// GetExchangeRates retrieves all cached rates keyed by currency code.
func (r *MarketRepository) GetExchangeRates() (map[string]float64, error) {
	rows, err := r.db.Query(`SELECT currency, rate FROM exchange_rate`)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange_rate table: %w", err)
	}
	defer rows.Close()

	rates := make(map[string]float64)
	for rows.Next() {
		var currency string
		var rate float64
		if err := rows.Scan(&currency, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan exchange_rate table results: %w", err)
		}
		rates[currency] = rate
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange_rate table: %w", err)
	}
	return rates, nil
}

// GetExchangeRate retrieves one cached rate.
// Returns apperrors.ErrExchangeRateNotFound if the currency has no cached rate.
func (r *MarketRepository) GetExchangeRate(currency string) (float64, error) {
	var rate float64
	err := r.db.QueryRow(`SELECT rate FROM exchange_rate WHERE currency = ?`, currency).Scan(&rate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperrors.ErrExchangeRateNotFound
		}
		return 0, fmt.Errorf("failed to query exchange_rate table: %w", err)
	}
	return rate, nil
}
