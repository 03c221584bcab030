package domain

import "time"

type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "created"
	OrderStatusExpired OrderStatus = "expired"
)

// Order is a gateway order. Amount is in minor currency units (paise).
type Order struct {
	ID        string      `json:"id"`
	Amount    int64       `json:"amount"`
	Currency  string      `json:"currency"`
	Receipt   string      `json:"receipt"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (o *Order) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
