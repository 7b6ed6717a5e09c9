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

// StockTransactionHandler handles HTTP requests for the stock transaction log.
type StockTransactionHandler struct {
	transactionService *service.StockTransactionService
}

// NewStockTransactionHandler creates a new StockTransactionHandler with the
// provided service dependency.
func NewStockTransactionHandler(transactionService *service.StockTransactionService) *StockTransactionHandler {
	return &StockTransactionHandler{
		transactionService: transactionService,
	}
}

// Transactions handles GET requests to list a portfolio's stock transactions
// in ledger order, optionally filtered to a date window.
//
// Endpoint: GET /api/transaction/portfolio/{uuid}?from=2024-01-01&to=2024-06-30
// Response: 200 OK with array of StockTransaction
func (h *StockTransactionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, to, err := parseDateWindow(query.Get("from"), query.Get("to"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions)
		return
	}

	var transactions []model.StockTransaction
	if from.IsZero() && to.IsZero() {
		transactions, err = h.transactionService.GetTransactions(chi.URLParam(r, "uuid"))
	} else {
		transactions, err = h.transactionService.GetTransactionsInRange(chi.URLParam(r, "uuid"), from, to)
	}
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions)
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// GetTransaction handles GET requests for a single stock transaction by ID.
//
// Endpoint: GET /api/transaction/{uuid}
// Response: 200 OK with StockTransaction
// Error: 404 Not Found if the transaction does not exist
func (h *StockTransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.transactionService.GetTransaction(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions)
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// CreateTransaction handles POST requests to record a stock BUY or SELL.
// The transaction is validated against the replayed lot ledger before it is
// committed, so an over-sell or a reference to a depleted lot is rejected
// without mutating the log.
//
// Endpoint: POST /api/transaction
// Request Body: CreateStockTransactionRequest
// Response: 201 Created with StockTransaction
// Error: 400 Bad Request on validation failure, 409 Conflict on ledger conflict
func (h *StockTransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateStockTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transaction, err := h.transactionService.CreateTransaction(req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToCreateTransaction)
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}

// UpdateTransaction handles PUT requests to correct a recorded stock
// transaction. The corrected log is replayed before the change commits, so
// corrections that would break later transactions are rejected.
//
// Endpoint: PUT /api/transaction/{uuid}
// Request Body: UpdateStockTransactionRequest
// Response: 200 OK with the corrected StockTransaction
// Error: 400 Bad Request on validation failure, 409 Conflict on ledger conflict
func (h *StockTransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateStockTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToUpdateTransaction)
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// DeleteTransaction handles DELETE requests to remove a stock transaction.
// Deletion is refused when the remaining log would no longer replay cleanly,
// for example removing a BUY whose lot a later SELL draws from.
//
// Endpoint: DELETE /api/transaction/{uuid}
// Response: 204 No Content
// Error: 409 Conflict when later transactions depend on the deleted one
func (h *StockTransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.transactionService.DeleteTransaction(chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToDeleteTransaction)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// AvailableLots handles GET requests for the open lots of one ticker, the
// candidates a SELL or a settlement leg may draw from.
//
// Endpoint: GET /api/transaction/portfolio/{uuid}/lots?ticker=AAPL
// Response: 200 OK with array of OpenLot
func (h *StockTransactionHandler) AvailableLots(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		response.RespondError(w, http.StatusBadRequest, "invalid request", "ticker query parameter is required")
		return
	}

	lots, err := h.transactionService.GetAvailableLots(chi.URLParam(r, "uuid"), ticker)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveLots)
		return
	}

	response.RespondJSON(w, http.StatusOK, lots)
}
