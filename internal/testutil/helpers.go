package testutil

import (
	"database/sql"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/deepstock/deepstock-backend/internal/currency"
	"github.com/deepstock/deepstock-backend/internal/repository"
	"github.com/deepstock/deepstock-backend/internal/service"
)

// MakeID generates a fresh UUID for test entities.
func MakeID() string {
	return uuid.New().String()
}

// MakePortfolioName generates a unique portfolio name with the given prefix.
func MakePortfolioName(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, rand.Intn(1000000))
}

// NewTestMarketService creates a MarketService backed by the mock quote
// client. The returned mock can be reconfigured per test.
func NewTestMarketService(t *testing.T, db *sql.DB) (*service.MarketService, *MockYahooClient) {
	t.Helper()

	marketRepo := repository.NewMarketRepository(db)
	client := NewMockYahooClient()
	normalizer := currency.NewNormalizer("CZK")

	return service.NewMarketService(marketRepo, client, normalizer), client
}

// NewTestStockTransactionService creates a StockTransactionService wired to
// the test database.
func NewTestStockTransactionService(t *testing.T, db *sql.DB) *service.StockTransactionService {
	t.Helper()

	stockRepo := repository.NewStockTransactionRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)
	marketService, _ := NewTestMarketService(t, db)

	return service.NewStockTransactionService(
		stockRepo,
		portfolioRepo,
		marketService,
	)
}

// NewTestOptionTransactionService creates an OptionTransactionService wired
// to the test database.
func NewTestOptionTransactionService(t *testing.T, db *sql.DB) *service.OptionTransactionService {
	t.Helper()

	optionRepo := repository.NewOptionTransactionRepository(db)
	stockRepo := repository.NewStockTransactionRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)
	marketService, _ := NewTestMarketService(t, db)

	return service.NewOptionTransactionService(
		optionRepo,
		stockRepo,
		portfolioRepo,
		marketService,
	)
}

// NewTestPortfolioService creates a PortfolioService wired to the test
// database.
func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()

	portfolioRepo := repository.NewPortfolioRepository(db)
	stockService := NewTestStockTransactionService(t, db)
	optionService := NewTestOptionTransactionService(t, db)
	marketService, _ := NewTestMarketService(t, db)

	return service.NewPortfolioService(
		portfolioRepo,
		stockService,
		optionService,
		marketService,
		currency.NewNormalizer("CZK"),
	)
}

// NewTestSettingService creates a SettingService with a throwaway fernet key.
func NewTestSettingService(t *testing.T, db *sql.DB) *service.SettingService {
	t.Helper()

	settingRepo := repository.NewSettingRepository(db)
	// 32 zero bytes, base64url encoded
	settingService, err := service.NewSettingService(settingRepo, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=")
	if err != nil {
		t.Fatalf("Failed to create setting service: %v", err)
	}
	return settingService
}
