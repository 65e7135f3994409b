// Package money converts between decimal price strings and integer minor units.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmpty    = errors.New("price is required")
	ErrInvalid  = errors.New("price is not a number")
	ErrNegative = errors.New("price must not be negative")
)

// ParseCents turns a decimal amount such as "19.99" into 1999. Extra
// fractional digits are rounded half-up, so "19.999" becomes 2000.
func ParseCents(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrEmpty
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, ErrInvalid
	}
	if d.IsNegative() {
		return 0, ErrNegative
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsInteger() || cents.GreaterThan(decimal.NewFromInt(maxCents)) {
		return 0, ErrInvalid
	}
	return cents.IntPart(), nil
}

// maxCents keeps parsed prices well inside int64 after multiplying by quantity.
const maxCents = 1 << 40

// Format renders cents as "<currency> 12.34".
func Format(cents int64, currency string) string {
	amount := decimal.New(cents, -2).StringFixed(2)
	if currency == "" {
		return amount
	}
	return fmt.Sprintf("%s %s", currency, amount)
}
