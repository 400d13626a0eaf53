// Package money provides amount parsing and rounding on top of
// shopspring/decimal.
//
// Amounts are kept with exactly two fraction digits, rounded half-up on the
// third. Negative amounts never reach storage: the direction of a movement
// lives in its type, not in the sign.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fraction digits every stored amount carries.
const Scale = 2

// ErrInvalidAmount is returned by Parse for anything that is not a plain
// positive decimal number.
var ErrInvalidAmount = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

// Round rounds d to two fraction digits, half away from zero. For the
// positive amounts the ledger stores that is half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Parse converts a user supplied string into a rounded amount.
//
// Both "12.34" and "12,34" are accepted. Signs, exponents and thousand
// separators are rejected.
//
//	Parse("12.345") -> 12.35
//	Parse("0,5")    -> 0.50
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "+-eE_ ") {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return Round(d), nil
}

// IsPositive reports whether d is strictly greater than zero after rounding.
// 0.004 rounds to zero and is therefore not a valid amount.
func IsPositive(d decimal.Decimal) bool {
	return Round(d).IsPositive()
}

// Format renders d with exactly two fraction digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// Percent returns part as a percentage of total, rounded to one fraction
// digit. A zero total yields zero.
func Percent(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(total).Round(1)
}
