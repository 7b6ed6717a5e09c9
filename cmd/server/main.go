package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/deepstock/deepstock-backend/internal/api"
	"github.com/deepstock/deepstock-backend/internal/config"
	"github.com/deepstock/deepstock-backend/internal/currency"
	"github.com/deepstock/deepstock-backend/internal/database"
	"github.com/deepstock/deepstock-backend/internal/repository"
	"github.com/deepstock/deepstock-backend/internal/service"
	"github.com/deepstock/deepstock-backend/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Apply pending schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	stockRepo := repository.NewStockTransactionRepository(db)
	optionRepo := repository.NewOptionTransactionRepository(db)
	marketRepo := repository.NewMarketRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	normalizer := currency.NewNormalizer(cfg.Market.BaseCurrency)
	marketService := service.NewMarketService(marketRepo, yahoo.NewFinanceClient(), normalizer)
	settingService, err := service.NewSettingService(settingRepo, cfg.Security.FernetKey)
	if err != nil {
		log.Fatalf("Failed to initialize settings: %v", err)
	}
	stockService := service.NewStockTransactionService(stockRepo, portfolioRepo, marketService)
	optionService := service.NewOptionTransactionService(optionRepo, stockRepo, portfolioRepo, marketService)
	portfolioService := service.NewPortfolioService(portfolioRepo, stockService, optionService, marketService, normalizer)

	// Background market refresh on the configured cron schedule
	scheduler := cron.New(cron.WithSeconds())
	if _, err := scheduler.AddFunc(cfg.Market.QuoteRefreshSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := marketService.RefreshRates(ctx); err != nil {
			log.Printf("Scheduled rate refresh failed: %v", err)
		}

		tickers, err := portfolioService.Tickers()
		if err != nil {
			log.Printf("Scheduled quote refresh failed to list tickers: %v", err)
			return
		}
		if err := marketService.RefreshQuotes(ctx, tickers); err != nil {
			log.Printf("Scheduled quote refresh failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Invalid quote refresh schedule %q: %v", cfg.Market.QuoteRefreshSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(api.Services{
		System:            systemService,
		Portfolio:         portfolioService,
		StockTransaction:  stockService,
		OptionTransaction: optionService,
		Market:            marketService,
		Setting:           settingService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
