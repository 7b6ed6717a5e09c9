package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deepstock/deepstock-backend/internal/api/request"
	"github.com/deepstock/deepstock-backend/internal/api/response"
	"github.com/deepstock/deepstock-backend/internal/apperrors"
	"github.com/deepstock/deepstock-backend/internal/model"
	"github.com/deepstock/deepstock-backend/internal/service"
)

// OptionTransactionHandler handles HTTP requests for the option transaction
// log and the derived open positions.
type OptionTransactionHandler struct {
	optionService *service.OptionTransactionService
}

// NewOptionTransactionHandler creates a new OptionTransactionHandler with the
// provided service dependency.
func NewOptionTransactionHandler(optionService *service.OptionTransactionService) *OptionTransactionHandler {
	return &OptionTransactionHandler{
		optionService: optionService,
	}
}

// CreateOptionTransactionResponse is the payload returned when recording an
// option transaction. Assignments and exercises settle in shares, so the
// linked stock leg produced in the same commit is included when present.
type CreateOptionTransactionResponse struct {
	Transaction *model.OptionTransaction `json:"transaction"`
	StockLeg    *model.StockTransaction  `json:"stockLeg,omitempty"`
}

// Transactions handles GET requests to list a portfolio's option transactions
// in ledger order, optionally filtered to a date window.
//
// Endpoint: GET /api/option-transaction/portfolio/{uuid}?from=2024-01-01&to=2024-06-30
// Response: 200 OK with array of OptionTransaction
func (h *OptionTransactionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, to, err := parseDateWindow(query.Get("from"), query.Get("to"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions)
		return
	}

	var transactions []model.OptionTransaction
	if from.IsZero() && to.IsZero() {
		transactions, err = h.optionService.GetTransactions(chi.URLParam(r, "uuid"))
	} else {
		transactions, err = h.optionService.GetTransactionsInRange(chi.URLParam(r, "uuid"), from, to)
	}
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions)
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// GetTransaction handles GET requests for a single option transaction by ID.
//
// Endpoint: GET /api/option-transaction/{uuid}
// Response: 200 OK with OptionTransaction
// Error: 404 Not Found if the transaction does not exist
func (h *OptionTransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.optionService.GetTransaction(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransaction)
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// CreateTransaction handles POST requests to record an option transaction.
// The action is validated against the replayed position ledger, so closing
// more contracts than are open, or closing in the wrong direction, is
// rejected without mutating the log. Assignments and exercises also produce
// a stock leg at the effective settlement price, committed atomically with
// the option leg.
//
// Endpoint: POST /api/option-transaction
// Request Body: CreateOptionTransactionRequest
// Response: 201 Created with CreateOptionTransactionResponse
// Error: 400 Bad Request on validation failure, 409 Conflict on ledger conflict
func (h *OptionTransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateOptionTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transaction, stockLeg, err := h.optionService.CreateTransaction(req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToCreateTransaction)
		return
	}

	response.RespondJSON(w, http.StatusCreated, CreateOptionTransactionResponse{
		Transaction: transaction,
		StockLeg:    stockLeg,
	})
}

// UpdateTransaction handles PUT requests to correct a recorded option
// transaction. The corrected log is replayed before the change commits.
// Contract identity and settlement linkage cannot be corrected in place.
//
// Endpoint: PUT /api/option-transaction/{uuid}
// Request Body: UpdateOptionTransactionRequest
// Response: 200 OK with the corrected OptionTransaction
// Error: 400 Bad Request on validation failure, 409 Conflict on ledger conflict
func (h *OptionTransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateOptionTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transaction, err := h.optionService.UpdateTransaction(chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToUpdateTransaction)
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// DeleteTransaction handles DELETE requests to remove an option transaction.
// Deletion is refused when the remaining log would no longer replay cleanly.
// When the transaction carries a linked stock leg, both are removed in one
// commit.
//
// Endpoint: DELETE /api/option-transaction/{uuid}
// Response: 204 No Content
// Error: 409 Conflict when later transactions depend on the deleted one
func (h *OptionTransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.optionService.DeleteTransaction(chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToDeleteTransaction)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Positions handles GET requests for a portfolio's open option positions,
// valued against cached option marks with moneyness, breakeven, and buffer.
//
// Endpoint: GET /api/option-transaction/portfolio/{uuid}/positions
// Response: 200 OK with array of OptionHoldingMetrics
func (h *OptionTransactionHandler) Positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.optionService.GetPositions(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveOptionHoldings)
		return
	}

	response.RespondJSON(w, http.StatusOK, positions)
}

// Stats handles GET requests for aggregate counts over a portfolio's open
// option positions.
//
// Endpoint: GET /api/option-transaction/portfolio/{uuid}/stats
// Response: 200 OK with OptionStats
func (h *OptionTransactionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.optionService.GetStats(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveOptionStats)
		return
	}

	response.RespondJSON(w, http.StatusOK, stats)
}

// ClosePosition handles POST requests to close an open position by OCC
// symbol. The closing direction is derived from the position: BTC for a net
// long position, STC for a net short one. Omitting contracts closes the full
// position.
//
// Endpoint: POST /api/option-transaction/portfolio/{uuid}/close/{symbol}
// Request Body: ClosePositionRequest
// Response: 201 Created with OptionTransaction
// Error: 404 Not Found when no open position exists for the symbol
func (h *OptionTransactionHandler) ClosePosition(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ClosePositionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transaction, err := h.optionService.ClosePosition(chi.URLParam(r, "uuid"), chi.URLParam(r, "symbol"), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToCreateTransaction)
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}
