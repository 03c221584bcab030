package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/domain"
)

type FavoritesStore interface {
	LoadFavorites(ctx context.Context, session string) ([]domain.Favorite, error)
	SaveFavorites(ctx context.Context, session string, favs []domain.Favorite) error
}

// Favorites is the session's bookmarked products, in the order they were added.
type Favorites struct {
	mu      sync.Mutex
	store   FavoritesStore
	session string
	items   []domain.Favorite
}

func OpenFavorites(ctx context.Context, store FavoritesStore, session string) (*Favorites, error) {
	items, err := store.LoadFavorites(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	return &Favorites{store: store, session: session, items: items}, nil
}

// Toggle adds p when absent and removes it when present. It reports whether
// p is a favorite afterwards.
func (f *Favorites) Toggle(ctx context.Context, p domain.Product) (bool, error) {
	if p.ID == "" {
		return false, ErrMissingProductID
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	next := make([]domain.Favorite, 0, len(f.items)+1)
	removed := false
	for _, fav := range f.items {
		if fav.ProductID == p.ID {
			removed = true
			continue
		}
		next = append(next, fav)
	}
	if !removed {
		next = append(next, domain.Favorite{
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Image:     p.Image(),
		})
	}

	if err := f.store.SaveFavorites(ctx, f.session, next); err != nil {
		return false, fmt.Errorf("failed to save favorites: %w", err)
	}
	f.items = next
	return !removed, nil
}

func (f *Favorites) Contains(productID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fav := range f.items {
		if fav.ProductID == productID {
			return true
		}
	}
	return false
}

func (f *Favorites) List() []domain.Favorite {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Favorite, len(f.items))
	copy(out, f.items)
	return out
}
