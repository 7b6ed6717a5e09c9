package service

import (
	"math"
	"strings"
)

// RoundingPrecision is the multiplier used for two-decimal rounding of
// monetary values in API responses.
const RoundingPrecision = 100

// sharesEpsilon absorbs float drift when comparing share and contract counts.
const sharesEpsilon = 1e-9

// round rounds a float64 value to two decimal places using the package RoundingPrecision constant.
// This function is used throughout the service layer to ensure consistent rounding of monetary
// values and share counts in API responses.
//
// The rounding uses the standard "round half up" approach via math.Round.
//
// Parameters:
//   - value: The floating-point value to round
//
// Returns the value rounded to two decimal places (0.01 precision).
//
// Example:
//
//	round(123.456789)  // returns 123.46
//	round(0.005)       // returns 0.01
//	round(1.994)       // returns 1.99
func round(value float64) float64 {
	return math.Round(value*RoundingPrecision) / RoundingPrecision
}

// normalizeTicker canonicalizes a ticker symbol for ledger grouping.
func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// fxOrOne treats an unset FX rate as 1, covering rows recorded before FX
// locking and base-currency transactions.
func fxOrOne(rate float64) float64 {
	if rate == 0 {
		return 1
	}
	return rate
}
