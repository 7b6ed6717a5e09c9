package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deepstock/deepstock-backend/internal/api/request"
	"github.com/deepstock/deepstock-backend/internal/api/response"
	"github.com/deepstock/deepstock-backend/internal/apperrors"
	"github.com/deepstock/deepstock-backend/internal/service"
)

// PortfolioHandler handles HTTP requests for portfolio endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the portfolioService.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependency.
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Portfolios handles GET requests to retrieve all portfolios.
//
// Endpoint: GET /api/portfolio
// Response: 200 OK with array of Portfolio
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, _ *http.Request) {
	portfolios, err := h.portfolioService.GetPortfolios()
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePortfolios)
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolios)
}

// GetPortfolio handles GET requests to retrieve a single portfolio by ID.
//
// Endpoint: GET /api/portfolio/{uuid}
// Response: 200 OK with Portfolio
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetPortfolio(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePortfolios)
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// CreatePortfolio handles POST requests to create a new portfolio.
//
// Endpoint: POST /api/portfolio
// Request Body: CreatePortfolioRequest (name, description, currency)
// Response: 201 Created with Portfolio
// Error: 400 Bad Request if validation fails or request body is invalid
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreatePortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePortfolios)
		return
	}

	response.RespondJSON(w, http.StatusCreated, portfolio)
}

// UpdatePortfolio handles PUT requests to update an existing portfolio.
//
// Endpoint: PUT /api/portfolio/{uuid}
// Request Body: UpdatePortfolioRequest (all fields optional)
// Response: 200 OK with updated Portfolio
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdatePortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	portfolio, err := h.portfolioService.UpdatePortfolio(chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePortfolios)
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// DeletePortfolio handles DELETE requests to remove a portfolio and its
// transaction logs.
//
// Endpoint: DELETE /api/portfolio/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	if err := h.portfolioService.DeletePortfolio(chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePortfolios)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Holdings handles GET requests to retrieve a portfolio's stock holdings
// valued against cached quotes and rates.
//
// Endpoint: GET /api/portfolio/{uuid}/holdings
// Response: 200 OK with array of HoldingValuation
func (h *PortfolioHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.portfolioService.GetHoldings(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveHoldings)
		return
	}

	response.RespondJSON(w, http.StatusOK, holdings)
}

// OpenLots handles GET requests to retrieve every open cost-basis lot in a
// portfolio, in purchase order.
//
// Endpoint: GET /api/portfolio/{uuid}/lots
// Response: 200 OK with array of OpenLot
func (h *PortfolioHandler) OpenLots(w http.ResponseWriter, r *http.Request) {
	lots, err := h.portfolioService.GetOpenLots(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveLots)
		return
	}

	response.RespondJSON(w, http.StatusOK, lots)
}

// Summary handles GET requests to retrieve the dashboard summary of a
// portfolio.
//
// Endpoint: GET /api/portfolio/{uuid}/summary
// Response: 200 OK with PortfolioSummary
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.portfolioService.GetSummary(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveHoldings)
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// StockPerformance handles GET requests for realized stock performance over
// a period preset or an explicit date window.
//
// Endpoint: GET /api/portfolio/{uuid}/performance/stocks?period=1M
//
//	or ?from=2024-01-01&to=2024-06-30
//
// Response: 200 OK with StockPerformance
// Error: 400 Bad Request for an unknown period preset or malformed bound
func (h *PortfolioHandler) StockPerformance(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	performance, err := h.portfolioService.GetStockPerformance(
		chi.URLParam(r, "uuid"), query.Get("period"), query.Get("from"), query.Get("to"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToComputePerformance)
		return
	}

	response.RespondJSON(w, http.StatusOK, performance)
}

// OptionPerformance handles GET requests for option premium and realized
// performance over a period preset or an explicit date window.
//
// Endpoint: GET /api/portfolio/{uuid}/performance/options?period=1M
// Response: 200 OK with OptionPerformance
func (h *PortfolioHandler) OptionPerformance(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	performance, err := h.portfolioService.GetOptionPerformance(
		chi.URLParam(r, "uuid"), query.Get("period"), query.Get("from"), query.Get("to"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToComputePerformance)
		return
	}

	response.RespondJSON(w, http.StatusOK, performance)
}

// PerformanceSeries handles GET requests for the cumulative realized P/L
// series over a period preset.
//
// Endpoint: GET /api/portfolio/{uuid}/performance/series?period=YTD
// Response: 200 OK with PerformanceSeries
func (h *PortfolioHandler) PerformanceSeries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	series, err := h.portfolioService.GetPerformanceSeries(
		chi.URLParam(r, "uuid"), query.Get("period"), query.Get("from"), query.Get("to"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToComputePerformance)
		return
	}

	response.RespondJSON(w, http.StatusOK, series)
}
