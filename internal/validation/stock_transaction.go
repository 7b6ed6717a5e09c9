package validation

import (
	"fmt"
	"strings"

	"github.com/deepstock/deepstock-backend/internal/api/request"
)

// ValidStockTransactionType contains the allowed stock transaction type values.
var ValidStockTransactionType = map[string]bool{
	"BUY": true, "SELL": true,
}

// ValidateCreateStockTransaction validates a stock transaction creation request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - portfolioId: Must be a valid UUID
//   - ticker: Must be non-empty
//   - type: Must be BUY or SELL
//   - shares: Must be positive
//   - pricePerShare: Must be positive
//   - currency: Must be a three-letter code
//   - date: Must be in YYYY-MM-DD format
//
// A sourceLotId is only legal on a SELL and must be a valid UUID; whether the
// lot exists and has enough shares is checked against the ledger at commit
// time, not here.
func ValidateCreateStockTransaction(req request.CreateStockTransactionRequest) error {
	if err := ValidateUUID(req.PortfolioID); err != nil {
		return err
	}

	errors := make(map[string]string)

	if strings.TrimSpace(req.Ticker) == "" {
		errors["ticker"] = "ticker is required"
	}

	if strings.TrimSpace(req.Type) == "" {
		errors["type"] = "type is required"
	} else if !ValidStockTransactionType[req.Type] {
		errors["type"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	if req.Shares <= 0.0 {
		errors["shares"] = "shares must be positive"
	}

	if req.PricePerShare <= 0.0 {
		errors["pricePerShare"] = "pricePerShare must be positive"
	}

	if len(req.Currency) != 3 {
		errors["currency"] = "currency must be a three-letter code"
	}

	if req.FxRateToBase < 0 {
		errors["fxRateToBase"] = "fxRateToBase cannot be negative"
	}

	if req.Fees < 0 {
		errors["fees"] = "fees cannot be negative"
	}

	if _, err := ParseDate(req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if req.SourceLotID != "" {
		if req.Type == "BUY" {
			errors["sourceLotId"] = "sourceLotId is only valid on a SELL"
		} else if err := ValidateUUID(req.SourceLotID); err != nil {
			errors["sourceLotId"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateUpdateStockTransaction validates a stock transaction correction.
// Every field is optional; provided values obey the same constraints as on
// creation. Whether the corrected log still folds is checked at commit time.
func ValidateUpdateStockTransaction(req request.UpdateStockTransactionRequest) error {
	errors := make(map[string]string)

	if req.Shares != nil && *req.Shares <= 0.0 {
		errors["shares"] = "shares must be positive"
	}
	if req.PricePerShare != nil && *req.PricePerShare <= 0.0 {
		errors["pricePerShare"] = "pricePerShare must be positive"
	}
	if req.Fees != nil && *req.Fees < 0 {
		errors["fees"] = "fees cannot be negative"
	}
	if req.FxRateToBase != nil && *req.FxRateToBase <= 0 {
		errors["fxRateToBase"] = "fxRateToBase must be positive"
	}
	if req.Date != nil {
		if _, err := ParseDate(*req.Date); err != nil {
			errors["date"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
