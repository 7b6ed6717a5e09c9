package validation

import (
	"strings"

	"github.com/deepstock/deepstock-backend/internal/api/request"
)

// ValidateCreatePortfolio validates a portfolio creation request.
//
// Required fields:
//   - name: Must be non-empty
//
// Optional fields (validated if provided):
//   - currency: Must be a three-letter code
func ValidateCreatePortfolio(req request.CreatePortfolioRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}

	if req.Currency != "" && len(req.Currency) != 3 {
		errors["currency"] = "currency must be a three-letter code"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
