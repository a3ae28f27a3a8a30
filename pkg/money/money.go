// Package money converts between decimal strings and integer minor units.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse converts a decimal string such as "12.50" into minor units for the
// given currency exponent. Fractions finer than the exponent are rejected.
func Parse(value string, exponent int32) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	minor := amount.Shift(exponent)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has more than %d fractional digits", value, exponent)
	}
	return minor.IntPart(), nil
}

// Format renders minor units as a fixed-point string, e.g. 1250 with
// exponent 2 becomes "12.50".
func Format(minor int64, exponent int32) string {
	return decimal.NewFromInt(minor).Shift(-exponent).StringFixed(exponent)
}

// Display prefixes the formatted amount with the currency code.
func Display(minor int64, exponent int32, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return Format(minor, exponent)
	}
	return code + " " + Format(minor, exponent)
}
