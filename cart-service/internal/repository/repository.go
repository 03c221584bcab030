package repository

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Backend is a durable key/value store for encoded carts and favorites.
// Consumers go through Store, which owns the encoding.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Watcher is implemented by backends that can announce writes to a key.
// The returned channel receives a value after every write by any process,
// coalesced, until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, key string) (<-chan struct{}, error)
}

func CartKey(session string) string      { return "cart:" + session }
func FavoritesKey(session string) string { return "favorites:" + session }
