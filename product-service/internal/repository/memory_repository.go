package repository

import (
	"context"
	"sync"

	"github.com/RajDalvi08/CamousKart/product-service/internal/domain"
)

// MemoryRepository keeps products in insertion order. Used for local runs
// and as a test double for the service layer.
type MemoryRepository struct {
	mu       sync.RWMutex
	products []domain.Product
	ids      map[string]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{ids: make(map[string]struct{})}
}

func (r *MemoryRepository) CreateProduct(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ids[p.ID]; ok {
		return ErrDuplicateProduct
	}
	cp := *p
	cp.Images = append([]string{}, p.Images...)
	r.products = append(r.products, cp)
	r.ids[p.ID] = struct{}{}
	return nil
}

func (r *MemoryRepository) GetAllProducts(_ context.Context) ([]*domain.Product, error) {
	return r.filter(func(*domain.Product) bool { return true }), nil
}

func (r *MemoryRepository) GetProductsByCategory(_ context.Context, categoryKey string) ([]*domain.Product, error) {
	return r.filter(func(p *domain.Product) bool {
		return domain.CategoryKey(p.Category) == categoryKey
	}), nil
}

func (r *MemoryRepository) DeleteCategory(_ context.Context, categoryKey string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.products[:0]
	var removed int64
	for _, p := range r.products {
		if domain.CategoryKey(p.Category) == categoryKey {
			delete(r.ids, p.ID)
			removed++
			continue
		}
		kept = append(kept, p)
	}
	r.products = kept
	return removed, nil
}

func (r *MemoryRepository) Close() error { return nil }

func (r *MemoryRepository) filter(match func(*domain.Product) bool) []*domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0)
	for i := range r.products {
		if !match(&r.products[i]) {
			continue
		}
		cp := r.products[i]
		cp.Images = append([]string{}, cp.Images...)
		out = append(out, &cp)
	}
	return out
}
