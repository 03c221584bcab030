// Package money holds the decimal helpers shared by the catalog, cart and payment code.
package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency used across the storefront. Minor unit is the paisa (1/100).
const (
	Currency      = "INR"
	minorExponent = 2
)

// ToMinor converts a major-unit amount (rupees) to integer minor units (paise),
// rounding half away from zero.
func ToMinor(major decimal.Decimal) int64 {
	return major.Shift(minorExponent).Round(0).IntPart()
}

func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -minorExponent)
}

// Coerce reads a price that may have been persisted as a JSON number or a
// JSON string ("50", " 12.5 "). ok is false when nothing numeric could be read.
func Coerce(raw json.RawMessage) (d decimal.Decimal, ok bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero, false
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return decimal.Zero, false
		}
		s = strings.TrimSpace(str)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Parse is Coerce for plain form values.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
