// Package core money handling: amounts cross the API as decimal.Decimal and
// are persisted as integer cents so SQL aggregation stays exact.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered amount to a decimal rounded half-up at
// two places. It accepts both dot (12.34) and comma (12,34) separators.
// Zero, negative, and non-numeric input fail with ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseLimit is ParseAmount for budget limits, where zero is allowed
// (a zero-limit category is budgeted, just at nothing).
func ParseLimit(s string) (decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, ErrInvalidLimit
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidLimit
	}
	return d, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Round(2), nil
}

// DecimalToCents converts a decimal amount to integer cents, rounding
// half-up on the third decimal place.
func DecimalToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// CentsToDecimal converts stored integer cents back to a two-place decimal.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
