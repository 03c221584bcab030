package domain

import (
	"github.com/shopspring/decimal"
)

// Product is the storefront's read-only view of a catalog listing.
type Product struct {
	ID          string
	Title       string
	Category    string
	Description string
	Price       decimal.Decimal
	Condition   string
	Location    string
	ContactInfo string
	Images      []string
}

// Image returns the first image reference, or "".
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// CartLine is one product entry in a cart. Title, Price and Image are a
// snapshot taken when the product was last added.
type CartLine struct {
	ProductID string
	Title     string
	Price     decimal.Decimal
	Image     string
	Quantity  int

	// LegacyKey identifies lines restored from old data that carry no
	// product id. It is never persisted.
	LegacyKey string
}

// Key is the line's display identity: the product id, or the synthesized
// legacy key.
func (l CartLine) Key() string {
	if l.ProductID != "" {
		return l.ProductID
	}
	return l.LegacyKey
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// MergeLines folds lines sharing a product id into the first of them,
// summing quantities. Lines without an id are kept as they are.
func MergeLines(lines []CartLine) []CartLine {
	merged := make([]CartLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.ProductID == "" {
			merged = append(merged, line)
			continue
		}
		if i, dup := index[line.ProductID]; dup {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

// Favorite is a bookmarked product.
type Favorite struct {
	ProductID string
	Title     string
	Price     decimal.Decimal
	Image     string
}
