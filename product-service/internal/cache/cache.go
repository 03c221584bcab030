package cache

import (
	"context"
	"errors"

	"github.com/RajDalvi08/CamousKart/product-service/internal/domain"
)

// AllProducts is the listing key for the unfiltered catalog.
const AllProducts = "*"

// ListingCache stores product listings keyed by normalized category key,
// or AllProducts for the full catalog.
type ListingCache interface {
	Get(ctx context.Context, key string) ([]*domain.Product, error)
	Set(ctx context.Context, key string, products []*domain.Product) error
	Invalidate(ctx context.Context, keys ...string) error
}

var ErrCacheMiss = errors.New("cache miss")

// Nop never hits. Used when no Redis address is configured.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]*domain.Product, error) { return nil, ErrCacheMiss }
func (Nop) Set(context.Context, string, []*domain.Product) error   { return nil }
func (Nop) Invalidate(context.Context, ...string) error            { return nil }
