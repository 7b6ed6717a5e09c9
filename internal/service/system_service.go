package service

import (
	"database/sql"
	"strconv"

	"github.com/deepstock/deepstock-backend/internal/database"
	"github.com/deepstock/deepstock-backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

func (s *SystemService) CheckVersion() string {
	return version.Version
}

// SchemaVersion returns the applied migration version as a string, "unknown"
// when it cannot be read.
func (s *SystemService) SchemaVersion() string {
	v, err := database.SchemaVersion(s.db)
	if err != nil {
		return "unknown"
	}
	return strconv.FormatInt(v, 10)
}
