package money

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Amount is a request-side amount. It decodes from a JSON number or a
// string, so "12,34" from a form posts the same as 12.34. Decoding fails
// with ErrInvalidAmount for anything Parse rejects.
type Amount struct {
	decimal.Decimal
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) > 0 && s[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return ErrInvalidAmount
		}
		s = unquoted
	}

	d, err := Parse(s)
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}
