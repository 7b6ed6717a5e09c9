package handlers

import (
	"net/http"

	"github.com/deepstock/deepstock-backend/internal/api/response"
	"github.com/deepstock/deepstock-backend/internal/apperrors"
	"github.com/deepstock/deepstock-backend/internal/service"
)

// MarketHandler handles HTTP requests for cached market data, refresh
// triggers, and application settings.
type MarketHandler struct {
	marketService    *service.MarketService
	portfolioService *service.PortfolioService
	settingService   *service.SettingService
}

// NewMarketHandler creates a new MarketHandler with the provided service
// dependencies.
func NewMarketHandler(marketService *service.MarketService, portfolioService *service.PortfolioService, settingService *service.SettingService) *MarketHandler {
	return &MarketHandler{
		marketService:    marketService,
		portfolioService: portfolioService,
		settingService:   settingService,
	}
}

// SetOptionQuoteRequest carries a manually supplied option mark. Option
// chains are not fetched from the quote provider, so marks arrive through
// this endpoint.
type SetOptionQuoteRequest struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
}

// SetProviderTokenRequest carries the quote provider API token. The token is
// encrypted at rest.
type SetProviderTokenRequest struct {
	Token string `json:"token"`
}

// Quotes handles GET requests for all cached stock quotes, keyed by ticker.
//
// Endpoint: GET /api/market/quotes
// Response: 200 OK with map of ticker to Quote
func (h *MarketHandler) Quotes(w http.ResponseWriter, _ *http.Request) {
	quotes, err := h.marketService.GetQuotes()
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveQuotes)
		return
	}

	response.RespondJSON(w, http.StatusOK, quotes)
}

// OptionQuotes handles GET requests for all cached option marks, keyed by
// OCC symbol.
//
// Endpoint: GET /api/market/option-quotes
// Response: 200 OK with map of symbol to OptionQuote
func (h *MarketHandler) OptionQuotes(w http.ResponseWriter, _ *http.Request) {
	quotes, err := h.marketService.GetOptionQuotes()
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveQuotes)
		return
	}

	response.RespondJSON(w, http.StatusOK, quotes)
}

// Rates handles GET requests for the exchange rate table to the base
// currency. Cached live rates overlay the static fallback table.
//
// Endpoint: GET /api/market/rates
// Response: 200 OK with map of currency to rate
func (h *MarketHandler) Rates(w http.ResponseWriter, _ *http.Request) {
	rates, err := h.marketService.GetRates()
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveRates)
		return
	}

	response.RespondJSON(w, http.StatusOK, rates)
}

// SetOptionQuote handles PUT requests to store a manually supplied option
// mark for an OCC symbol.
//
// Endpoint: PUT /api/market/option-quotes
// Request Body: SetOptionQuoteRequest
// Response: 204 No Content
func (h *MarketHandler) SetOptionQuote(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[SetOptionQuoteRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.Symbol == "" {
		response.RespondError(w, http.StatusBadRequest, "invalid request", "symbol is required")
		return
	}

	if err := h.marketService.SetOptionQuote(req.Symbol, req.Price, req.Bid, req.Ask); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRefreshMarket)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// RefreshQuotes handles POST requests to fetch fresh quotes for every ticker
// referenced by any portfolio. Requires the internal API key.
//
// Endpoint: POST /api/market/refresh/quotes
// Response: 204 No Content
// Error: 500 Internal Server Error when every fetch fails
func (h *MarketHandler) RefreshQuotes(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.portfolioService.Tickers()
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRefreshMarket)
		return
	}

	if err := h.marketService.RefreshQuotes(r.Context(), tickers); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRefreshMarket)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// RefreshRates handles POST requests to fetch fresh exchange rates to the
// base currency. Requires the internal API key.
//
// Endpoint: POST /api/market/refresh/rates
// Response: 204 No Content
func (h *MarketHandler) RefreshRates(w http.ResponseWriter, r *http.Request) {
	if err := h.marketService.RefreshRates(r.Context()); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRefreshMarket)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// SetProviderToken handles PUT requests to store the quote provider token.
// The token is encrypted before it reaches the database. Requires the
// internal API key.
//
// Endpoint: PUT /api/market/settings/provider-token
// Response: 204 No Content
func (h *MarketHandler) SetProviderToken(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[SetProviderTokenRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.Token == "" {
		response.RespondError(w, http.StatusBadRequest, "invalid request", "token is required")
		return
	}

	if err := h.settingService.SetSecret(service.SettingProviderToken, req.Token); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRefreshMarket)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
