package validation

import (
	"fmt"
	"strings"

	"github.com/deepstock/deepstock-backend/internal/api/request"
	"github.com/deepstock/deepstock-backend/internal/model"
)

// ValidOptionType contains the allowed option type values.
var ValidOptionType = map[string]bool{
	"call": true, "put": true,
}

// ValidOptionAction contains the allowed option action values.
var ValidOptionAction = map[string]bool{
	"BTO": true, "STO": true, "STC": true, "BTC": true,
	"EXPIRATION": true, "ASSIGNMENT": true, "EXERCISE": true,
}

// ValidateCreateOptionTransaction validates an option transaction creation request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - portfolioId: Must be a valid UUID
//   - underlying: Must be non-empty
//   - optionType: Must be call or put
//   - strike: Must be positive
//   - expiration: Must be in YYYY-MM-DD format
//   - action: Must be one of BTO, STO, STC, BTC, EXPIRATION, ASSIGNMENT, EXERCISE
//   - contracts: Must be positive
//   - currency: Must be a three-letter code
//   - date: Must be in YYYY-MM-DD format
//
// premiumPerContract is required for BTO, STO, STC, and BTC; EXPIRATION,
// ASSIGNMENT, and EXERCISE carry no premium of their own. Whether the action
// is legal for the position's current state, and whether a consumedLotId is
// needed, is decided against the ledger at commit time.
func ValidateCreateOptionTransaction(req request.CreateOptionTransactionRequest) error {
	if err := ValidateUUID(req.PortfolioID); err != nil {
		return err
	}

	errors := make(map[string]string)

	if strings.TrimSpace(req.Underlying) == "" {
		errors["underlying"] = "underlying is required"
	}

	if !ValidOptionType[req.OptionType] {
		errors["optionType"] = fmt.Sprintf("invalid optionType: %s", req.OptionType)
	}

	if req.Strike <= 0 {
		errors["strike"] = "strike must be positive"
	}

	if _, err := ParseDate(req.Expiration); err != nil {
		errors["expiration"] = err.Error()
	}

	action := model.OptionAction(req.Action)
	if strings.TrimSpace(req.Action) == "" {
		errors["action"] = "action is required"
	} else if !ValidOptionAction[req.Action] {
		errors["action"] = fmt.Sprintf("invalid action: %s", req.Action)
	} else if action.RequiresPremium() {
		if req.Premium == nil {
			errors["premiumPerContract"] = fmt.Sprintf("premiumPerContract is required for %s", req.Action)
		} else if *req.Premium < 0 {
			errors["premiumPerContract"] = "premiumPerContract cannot be negative"
		}
	} else if req.Premium != nil {
		errors["premiumPerContract"] = fmt.Sprintf("premiumPerContract is not allowed for %s", req.Action)
	}

	if req.Contracts <= 0 {
		errors["contracts"] = "contracts must be positive"
	}

	if len(req.Currency) != 3 {
		errors["currency"] = "currency must be a three-letter code"
	}

	if req.FxRateToBase != nil && *req.FxRateToBase < 0 {
		errors["fxRateToBase"] = "fxRateToBase cannot be negative"
	}

	if req.Fees < 0 {
		errors["fees"] = "fees cannot be negative"
	}

	if _, err := ParseDate(req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if req.ConsumedLotID != "" {
		if req.Action != "ASSIGNMENT" && req.Action != "EXERCISE" {
			errors["consumedLotId"] = "consumedLotId is only valid for ASSIGNMENT or EXERCISE"
		} else if err := ValidateUUID(req.ConsumedLotID); err != nil {
			errors["consumedLotId"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateUpdateOptionTransaction validates an option transaction correction.
// Every field is optional; provided values obey the same constraints as on
// creation. Whether the corrected log still folds is checked at commit time.
func ValidateUpdateOptionTransaction(req request.UpdateOptionTransactionRequest) error {
	errors := make(map[string]string)

	if req.Contracts != nil && *req.Contracts <= 0 {
		errors["contracts"] = "contracts must be positive"
	}
	if req.Premium != nil && *req.Premium < 0 {
		errors["premiumPerContract"] = "premiumPerContract cannot be negative"
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

// ValidateClosePosition validates a close-position request.
func ValidateClosePosition(req request.ClosePositionRequest) error {
	errors := make(map[string]string)

	if req.Premium < 0 {
		errors["premiumPerContract"] = "premiumPerContract cannot be negative"
	}
	if req.Contracts < 0 {
		errors["contracts"] = "contracts cannot be negative"
	}
	if req.Fees < 0 {
		errors["fees"] = "fees cannot be negative"
	}
	if _, err := ParseDate(req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
