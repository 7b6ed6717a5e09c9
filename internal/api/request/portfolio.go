package request

// CreatePortfolioRequest is the request body for creating a new portfolio.
type CreatePortfolioRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Currency    string `json:"currency,omitempty"` // defaults to the configured base currency
}

// UpdatePortfolioRequest is the request body for updating an existing portfolio.
// Only provided fields are updated.
type UpdatePortfolioRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Currency    *string `json:"currency,omitempty"`
}
