package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/deepstock/deepstock-backend/internal/api/response"
	"github.com/deepstock/deepstock-backend/internal/apperrors"
	"github.com/deepstock/deepstock-backend/internal/validation"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode JSON: %v", err)
		}
	}
}

// parseJSON decodes a request body into the given request type, rejecting
// unknown fields.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(&req)
	return req, err
}

// parseDateWindow parses optional from/to date filters on listing endpoints.
// An empty value leaves that bound open.
func parseDateWindow(from, to string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if from != "" {
		if start, err = validation.ParseDate(from); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to != "" {
		if end, err = validation.ParseDate(to); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

// respondServiceError maps a service-layer error onto an HTTP status:
// validation failures and malformed input map to 400, missing resources to
// 404, ledger-state conflicts (illegal transitions, lot depletion) to 409,
// anything else to the caller's fallback message with 500.
func respondServiceError(w http.ResponseWriter, err error, fallback error) {
	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrPortfolioNotFound),
		errors.Is(err, apperrors.ErrTransactionNotFound),
		errors.Is(err, apperrors.ErrOptionTransactionNotFound),
		errors.Is(err, apperrors.ErrOptionPositionNotFound),
		errors.Is(err, apperrors.ErrSettingNotFound):
		response.RespondError(w, http.StatusNotFound, err.Error(), "")

	case errors.Is(err, apperrors.ErrInvalidPositionTransition),
		errors.Is(err, apperrors.ErrInsufficientLotShares),
		errors.Is(err, apperrors.ErrLotNotFound):
		response.RespondError(w, http.StatusConflict, "transaction conflicts with ledger state", err.Error())

	case errors.Is(err, apperrors.ErrLotSelectionRequired),
		errors.Is(err, apperrors.ErrPremiumRequired),
		errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrMalformedOccSymbol),
		errors.Is(err, validation.ErrInvalidUUID),
		errors.Is(err, validation.ErrInvalidDate):
		response.RespondError(w, http.StatusBadRequest, "invalid request", err.Error())

	default:
		response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
	}
}
