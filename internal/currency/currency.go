// Package currency normalizes native-currency amounts to the portfolio base
// currency.
//
// Two conversion modes exist and must not be mixed: historical figures use
// the FX rate locked on the transaction at creation (so realized P/L is
// immutable), while current valuations use a live rate table. An unknown
// currency in a live table falls back to a rate of 1 rather than failing;
// valuation stays resilient to stale FX tables and the fallback is surfaced
// as a warning, not an error.
package currency

// DefaultBase is the base currency used when none is configured.
const DefaultBase = "CZK"

// Normalizer converts amounts into one fixed base currency.
type Normalizer struct {
	base string
}

// NewNormalizer returns a Normalizer for the given base currency, falling
// back to DefaultBase when empty.
func NewNormalizer(base string) *Normalizer {
	if base == "" {
		base = DefaultBase
	}
	return &Normalizer{base: base}
}

// Base returns the base currency code.
func (n *Normalizer) Base() string {
	return n.base
}

// ToBase converts an amount from the given currency using a live rate table.
// Amounts already in the base currency pass through unchanged; currencies
// missing from the table use a rate of 1.
func (n *Normalizer) ToBase(amount float64, currency string, rates map[string]float64) float64 {
	converted, _ := n.ToBaseChecked(amount, currency, rates)
	return converted
}

// ToBaseChecked is ToBase plus a flag reporting whether a real rate was
// found. Callers use the flag to surface an unknown-currency warning without
// failing the computation.
func (n *Normalizer) ToBaseChecked(amount float64, currency string, rates map[string]float64) (float64, bool) {
	if currency == n.base || currency == "" {
		return amount, true
	}
	rate, ok := rates[currency]
	if !ok || rate == 0 {
		return amount, false
	}
	return amount * rate, true
}

// LockedToBase converts an amount at a rate locked on a transaction. Callers
// must pass the transaction's stored rate, never a live one, so that history
// never moves. A zero rate is treated as 1 (rows predating FX locking).
func LockedToBase(amount, fxRate float64) float64 {
	if fxRate == 0 {
		fxRate = 1
	}
	return amount * fxRate
}
