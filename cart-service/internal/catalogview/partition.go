package catalogview

import "github.com/RajDalvi08/CamousKart/cart-service/internal/domain"

const ConditionNew = "new"

// Listing splits a category into brand-new and everything else (used,
// refurbished, unknown).
type Listing struct {
	New  []domain.Product
	Used []domain.Product
}

// Partition keeps the catalog order within each group.
func Partition(products []domain.Product) Listing {
	l := Listing{New: []domain.Product{}, Used: []domain.Product{}}
	for _, p := range products {
		if p.Condition == ConditionNew {
			l.New = append(l.New, p)
		} else {
			l.Used = append(l.Used, p)
		}
	}
	return l
}

func (l Listing) Len() int { return len(l.New) + len(l.Used) }
