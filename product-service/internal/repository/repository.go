package repository

import (
	"context"
	"errors"

	"github.com/RajDalvi08/CamousKart/product-service/internal/domain"
)

var ErrDuplicateProduct = errors.New("product already exists")

// ProductRepository is the Catalog Store contract. Category lookups take a
// normalized key (domain.CategoryKey), never the raw path segment.
type ProductRepository interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	GetAllProducts(ctx context.Context) ([]*domain.Product, error)
	GetProductsByCategory(ctx context.Context, categoryKey string) ([]*domain.Product, error)
	// DeleteCategory is the administrative purge. Returns the number of removed products.
	DeleteCategory(ctx context.Context, categoryKey string) (int64, error)
	Close() error
}
