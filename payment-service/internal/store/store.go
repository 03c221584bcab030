package store

import (
	"errors"

	"github.com/RajDalvi08/CamousKart/payment-service/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStore keeps gateway orders for the lifetime of a payment attempt.
type OrderStore interface {
	// Create records a new order for amount minor units.
	Create(amount int64, currency, receipt string) (*domain.Order, error)

	Get(id string) (*domain.Order, error)

	// Close shuts down the store and any background processes
	Close() error
}
