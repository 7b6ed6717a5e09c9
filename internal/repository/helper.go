package repository

import (
	"database/sql"
	"fmt"
	"time"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repositories accept it so that services can run compound writes (an option
// leg plus its linked stock leg) inside a single transaction.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// dateLayouts are tried in order when parsing date columns. SQLite's
// CURRENT_TIMESTAMP produces the second layout.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseTime parses a date string in "2006-01-02", SQLite datetime, or RFC3339 format.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if returnTime, err := time.Parse(layout, str); err == nil {
			return returnTime.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %q", str)
}

// parseNullableTime parses an optional date column, returning zero time for NULL.
func parseNullableTime(str string) (time.Time, error) {
	if str == "" {
		return time.Time{}, nil
	}
	return ParseTime(str)
}
