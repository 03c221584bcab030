package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/apperr"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/domain"
	"go.uber.org/zap"
)

// Store reads and writes per-session carts and favorites through a Backend.
// Unreadable persisted data is logged and replaced by an empty collection.
type Store struct {
	backend Backend
	logger  *zap.Logger
}

func NewStore(backend Backend, logger *zap.Logger) *Store {
	return &Store{backend: backend, logger: logger}
}

func (s *Store) LoadCart(ctx context.Context, session string) ([]domain.CartLine, error) {
	data, err := s.get(ctx, CartKey(session))
	if err != nil {
		return nil, err
	}
	lines, report := DecodeCart(data)
	s.logReport(CartKey(session), report)
	return lines, nil
}

func (s *Store) SaveCart(ctx context.Context, session string, lines []domain.CartLine) error {
	data, err := EncodeCart(lines)
	if err != nil {
		return err
	}
	if err := s.backend.Set(ctx, CartKey(session), data); err != nil {
		return apperr.Wrap(apperr.NetworkFailure, "Could not save your cart", err)
	}
	return nil
}

func (s *Store) LoadFavorites(ctx context.Context, session string) ([]domain.Favorite, error) {
	data, err := s.get(ctx, FavoritesKey(session))
	if err != nil {
		return nil, err
	}
	favs, report := DecodeFavorites(data)
	s.logReport(FavoritesKey(session), report)
	return favs, nil
}

func (s *Store) SaveFavorites(ctx context.Context, session string, favs []domain.Favorite) error {
	data, err := EncodeFavorites(favs)
	if err != nil {
		return err
	}
	if err := s.backend.Set(ctx, FavoritesKey(session), data); err != nil {
		return apperr.Wrap(apperr.NetworkFailure, "Could not save your favorites", err)
	}
	return nil
}

// WatchCart reports writes to the session's cart. It returns (nil, nil) when
// the backend cannot notify.
func (s *Store) WatchCart(ctx context.Context, session string) (<-chan struct{}, error) {
	w, ok := s.backend.(Watcher)
	if !ok {
		return nil, nil
	}
	ch, err := w.Watch(ctx, CartKey(session))
	if err != nil {
		return nil, fmt.Errorf("failed to watch cart: %w", err)
	}
	return ch, nil
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.NetworkFailure, "Could not load your cart", err)
	}
	return data, nil
}

func (s *Store) logReport(key string, r DecodeReport) {
	if r.Clean() {
		return
	}
	if r.Corrupt {
		s.logger.Warn("discarding unreadable stored data",
			zap.String("key", key),
			zap.String("kind", string(apperr.PersistenceCorruption)))
		return
	}
	s.logger.Info("repaired stored data",
		zap.String("key", key),
		zap.Int("skipped_entries", r.SkippedEntries),
		zap.Strings("coerced_prices", r.CoercedPrices),
		zap.Strings("merged_ids", r.MergedIDs))
}
