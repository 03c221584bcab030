// Package events defines the catalog messages exchanged over Kafka between the
// product service and the storefront.
package events

import "time"

const (
	CatalogTopic = "catalog-events"

	TypeProductPublished = "product.published"
	TypeCategoryPurged   = "category.purged"
)

// CatalogChanged is the payload of every message on CatalogTopic. Consumers
// treat it as "catalog may have changed"; the fields are informational.
type CatalogChanged struct {
	Type       string    `json:"type"`
	ProductID  string    `json:"product_id,omitempty"`
	Category   string    `json:"category"`
	OccurredAt time.Time `json:"occurred_at"`
}
