package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "used"
)

func (c Condition) Valid() bool {
	return c == ConditionNew || c == ConditionUsed
}

type Product struct {
	ID          string
	Title       string
	Category    string
	Description string
	Price       decimal.Decimal
	Condition   Condition
	Location    string
	ContactInfo string
	Images      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Categories is the fixed set of listing categories, by display label.
var Categories = []string{"Books", "Calculators", "Labcoats", "Drafters", "EgKit", "EgContainer"}

// CategoryKey normalizes a category for matching: case-insensitive, blind to
// spaces, dashes and underscores, and to one trailing plural "s".
// "Lab Coats", "labcoat" and "Labcoats" all map to "labcoat".
func CategoryKey(category string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(category)) {
		switch r {
		case ' ', '-', '_', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSuffix(b.String(), "s")
}

// CanonicalCategory returns the display label matching category, if any.
func CanonicalCategory(category string) (string, bool) {
	key := CategoryKey(category)
	if key == "" {
		return "", false
	}
	for _, c := range Categories {
		if CategoryKey(c) == key {
			return c, true
		}
	}
	return "", false
}
