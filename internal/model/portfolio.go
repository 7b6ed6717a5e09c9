package model

import "time"

// Portfolio groups transactions under one base-currency account.
type Portfolio struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}
