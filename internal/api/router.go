package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/deepstock/deepstock-backend/internal/api/handlers"
	custommiddleware "github.com/deepstock/deepstock-backend/internal/api/middleware"
	"github.com/deepstock/deepstock-backend/internal/config"
	"github.com/deepstock/deepstock-backend/internal/service"
)

// Services bundles the service-layer dependencies the router wires into
// handlers.
type Services struct {
	System            *service.SystemService
	Portfolio         *service.PortfolioService
	StockTransaction  *service.StockTransactionService
	OptionTransaction *service.OptionTransactionService
	Market            *service.MarketService
	Setting           *service.SettingService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio)
			r.Get("/", portfolioHandler.Portfolios)
			r.Post("/", portfolioHandler.CreatePortfolio)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", portfolioHandler.GetPortfolio)
				r.Put("/", portfolioHandler.UpdatePortfolio)
				r.Delete("/", portfolioHandler.DeletePortfolio)
				r.Get("/holdings", portfolioHandler.Holdings)
				r.Get("/lots", portfolioHandler.OpenLots)
				r.Get("/summary", portfolioHandler.Summary)
				r.Get("/performance/stocks", portfolioHandler.StockPerformance)
				r.Get("/performance/options", portfolioHandler.OptionPerformance)
				r.Get("/performance/series", portfolioHandler.PerformanceSeries)
			})
		})

		r.Route("/transaction", func(r chi.Router) {
			transactionHandler := handlers.NewStockTransactionHandler(svc.StockTransaction)
			r.Post("/", transactionHandler.CreateTransaction)

			r.Route("/portfolio/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", transactionHandler.Transactions)
				r.Get("/lots", transactionHandler.AvailableLots)
			})

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", transactionHandler.GetTransaction)
				r.Put("/", transactionHandler.UpdateTransaction)
				r.Delete("/", transactionHandler.DeleteTransaction)
			})
		})

		r.Route("/option-transaction", func(r chi.Router) {
			optionHandler := handlers.NewOptionTransactionHandler(svc.OptionTransaction)
			r.Post("/", optionHandler.CreateTransaction)

			r.Route("/portfolio/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", optionHandler.Transactions)
				r.Get("/positions", optionHandler.Positions)
				r.Get("/stats", optionHandler.Stats)
				r.Post("/close/{symbol}", optionHandler.ClosePosition)
			})

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", optionHandler.GetTransaction)
				r.Put("/", optionHandler.UpdateTransaction)
				r.Delete("/", optionHandler.DeleteTransaction)
			})
		})

		r.Route("/market", func(r chi.Router) {
			marketHandler := handlers.NewMarketHandler(svc.Market, svc.Portfolio, svc.Setting)
			r.Get("/quotes", marketHandler.Quotes)
			r.Get("/option-quotes", marketHandler.OptionQuotes)
			r.Put("/option-quotes", marketHandler.SetOptionQuote)
			r.Get("/rates", marketHandler.Rates)

			// Internal endpoints, gated by API key
			r.Group(func(r chi.Router) {
				r.Use(custommiddleware.APIKeyMiddleware)
				r.Post("/refresh/quotes", marketHandler.RefreshQuotes)
				r.Post("/refresh/rates", marketHandler.RefreshRates)
				r.Put("/settings/provider-token", marketHandler.SetProviderToken)
			})
		})
	})

	return r
}
