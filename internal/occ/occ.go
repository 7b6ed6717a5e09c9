// Package occ encodes and decodes OCC option symbols.
//
// The OCC format is [TICKER][YYMMDD][C|P][strike x 1000, 8 digits]:
//
//	AAPL, 2025-01-17, call, 150    -> AAPL250117C00150000
//	TSLA, 2025-03-21, put,  200.5  -> TSLA250321P00200500
//
// Encode and Decode are exact inverses for every strike expressible with
// three decimal places. Symbols are always computed from their inputs, never
// stored independently, so they cannot drift.
package occ

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/deepstock/deepstock-backend/internal/apperrors"
	"github.com/deepstock/deepstock-backend/internal/model"
)

// expirationLayout is the two-digit year/month/day segment of a symbol.
const expirationLayout = "060102"

// strikeDigits is the width of the zero-padded strike segment.
const strikeDigits = 8

// Contract is the decoded form of an OCC symbol.
type Contract struct {
	Underlying string
	Expiration time.Time
	OptionType model.OptionType
	Strike     float64
}

// Encode builds the OCC symbol for a contract. The underlying is uppercased
// and trimmed; the strike is scaled by 1000 with decimal arithmetic so that
// three-decimal strikes round exactly.
func Encode(underlying string, expiration time.Time, optionType model.OptionType, strike float64) string {
	ticker := strings.ToUpper(strings.TrimSpace(underlying))

	typeChar := "P"
	if optionType == model.Call {
		typeChar = "C"
	}

	strikeInt := decimal.NewFromFloat(strike).
		Mul(decimal.NewFromInt(1000)).
		Round(0).
		IntPart()

	return fmt.Sprintf("%s%s%s%0*d", ticker, expiration.Format(expirationLayout), typeChar, strikeDigits, strikeInt)
}

// EncodeContract is Encode applied to a Contract value.
func EncodeContract(c Contract) string {
	return Encode(c.Underlying, c.Expiration, c.OptionType, c.Strike)
}

// Decode parses an OCC symbol back into its contract fields. It returns a
// wrapped apperrors.ErrMalformedOccSymbol for any symbol that Encode could
// not have produced.
func Decode(symbol string) (Contract, error) {
	// Shortest legal symbol: 1-char ticker + 6-digit date + type + 8-digit strike.
	const tail = len(expirationLayout) + 1 + strikeDigits
	if len(symbol) < 1+tail {
		return Contract{}, fmt.Errorf("%w: %q is too short", apperrors.ErrMalformedOccSymbol, symbol)
	}

	ticker := symbol[:len(symbol)-tail]
	dateStr := symbol[len(symbol)-tail : len(symbol)-tail+len(expirationLayout)]
	typeChar := symbol[len(symbol)-1-strikeDigits]
	strikeStr := symbol[len(symbol)-strikeDigits:]

	if ticker != strings.ToUpper(ticker) || strings.TrimSpace(ticker) != ticker {
		return Contract{}, fmt.Errorf("%w: %q has an invalid underlying", apperrors.ErrMalformedOccSymbol, symbol)
	}

	expiration, err := time.ParseInLocation(expirationLayout, dateStr, time.UTC)
	if err != nil {
		return Contract{}, fmt.Errorf("%w: %q has an invalid expiration: %v", apperrors.ErrMalformedOccSymbol, symbol, err)
	}

	var optionType model.OptionType
	switch typeChar {
	case 'C':
		optionType = model.Call
	case 'P':
		optionType = model.Put
	default:
		return Contract{}, fmt.Errorf("%w: %q has contract type %q, want C or P", apperrors.ErrMalformedOccSymbol, symbol, string(typeChar))
	}

	strikeInt, err := strconv.ParseInt(strikeStr, 10, 64)
	if err != nil {
		return Contract{}, fmt.Errorf("%w: %q has an invalid strike: %v", apperrors.ErrMalformedOccSymbol, symbol, err)
	}
	strike := decimal.NewFromInt(strikeInt).Div(decimal.NewFromInt(1000)).InexactFloat64()

	return Contract{
		Underlying: ticker,
		Expiration: expiration,
		OptionType: optionType,
		Strike:     strike,
	}, nil
}
