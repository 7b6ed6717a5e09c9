package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/deepstock/deepstock-backend/internal/apperrors"
)

// SettingRepository provides data access for the key/value setting table.
// Encryption of sensitive values is handled by the settings service; the
// repository only records whether a stored value is encrypted.
type SettingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new SettingRepository with the provided database connection.
func NewSettingRepository(db *sql.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get retrieves a setting value and its encryption flag.
// Returns apperrors.ErrSettingNotFound if the key does not exist.
func (r *SettingRepository) Get(key string) (string, bool, error) {
	var value string
	var isEncrypted bool
	err := r.db.QueryRow(`SELECT value, is_encrypted FROM setting WHERE key = ?`, key).
		Scan(&value, &isEncrypted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, apperrors.ErrSettingNotFound
		}
		return "", false, fmt.Errorf("failed to query setting table: %w", err)
	}
	return value, isEncrypted, nil
}

// Set stores a setting value, replacing any previous value for the key.
func (r *SettingRepository) Set(key, value string, isEncrypted bool) error {
	_, err := r.db.Exec(`
		INSERT INTO setting (key, value, is_encrypted, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			is_encrypted = excluded.is_encrypted,
			updated_at = excluded.updated_at
	`, key, value, isEncrypted, time.Now().UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}
	return nil
}

// Delete removes a setting.
// Returns apperrors.ErrSettingNotFound if the key does not exist.
func (r *SettingRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM setting WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrSettingNotFound
	}
	return nil
}
