package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the embedded migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Portfolio table
		CREATE TABLE IF NOT EXISTS portfolio (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			description TEXT,
			currency VARCHAR(3) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Stock transaction table
		CREATE TABLE IF NOT EXISTS stock_transaction (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			portfolio_id VARCHAR(36) NOT NULL,
			ticker VARCHAR(10) NOT NULL,
			type VARCHAR(10) NOT NULL,
			shares FLOAT NOT NULL,
			price_per_share FLOAT NOT NULL,
			currency VARCHAR(3) NOT NULL,
			fx_rate_to_base FLOAT NOT NULL DEFAULT 1,
			fees FLOAT NOT NULL DEFAULT 0,
			source_lot_id VARCHAR(36),
			date DATE NOT NULL,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(portfolio_id) REFERENCES portfolio(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_stock_transaction_portfolio
			ON stock_transaction(portfolio_id, ticker, date);

		-- Option transaction table
		CREATE TABLE IF NOT EXISTS option_transaction (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			portfolio_id VARCHAR(36) NOT NULL,
			underlying VARCHAR(10) NOT NULL,
			option_symbol VARCHAR(32) NOT NULL,
			option_type VARCHAR(4) NOT NULL,
			strike FLOAT NOT NULL,
			expiration DATE NOT NULL,
			action VARCHAR(10) NOT NULL,
			contracts INTEGER NOT NULL,
			premium FLOAT,
			currency VARCHAR(3) NOT NULL,
			fx_rate_to_base FLOAT,
			fees FLOAT NOT NULL DEFAULT 0,
			consumed_lot_id VARCHAR(36),
			linked_stock_transaction_id VARCHAR(36),
			date DATE NOT NULL,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(portfolio_id) REFERENCES portfolio(id) ON DELETE CASCADE,
			FOREIGN KEY(linked_stock_transaction_id) REFERENCES stock_transaction(id)
		);

		CREATE INDEX IF NOT EXISTS idx_option_transaction_portfolio
			ON option_transaction(portfolio_id, option_symbol, date);

		-- Latest stock quotes
		CREATE TABLE IF NOT EXISTS quote (
			ticker VARCHAR(10) NOT NULL PRIMARY KEY,
			price FLOAT NOT NULL,
			change FLOAT NOT NULL DEFAULT 0,
			currency VARCHAR(3) NOT NULL,
			updated_at DATETIME NOT NULL
		);

		-- Latest option quotes keyed by OCC symbol
		CREATE TABLE IF NOT EXISTS option_quote (
			option_symbol VARCHAR(32) NOT NULL PRIMARY KEY,
			price FLOAT NOT NULL,
			bid FLOAT NOT NULL DEFAULT 0,
			ask FLOAT NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL
		);

		-- Exchange rates relative to the base currency
		CREATE TABLE IF NOT EXISTS exchange_rate (
			currency VARCHAR(3) NOT NULL PRIMARY KEY,
			rate FLOAT NOT NULL,
			updated_at DATETIME NOT NULL
		);

		-- Key/value settings
		CREATE TABLE IF NOT EXISTS setting (
			key VARCHAR(50) NOT NULL PRIMARY KEY,
			value TEXT NOT NULL,
			is_encrypted BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at DATETIME NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}
