package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/apperr"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type failingBackend struct{ err error }

func (f failingBackend) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingBackend) Set(context.Context, string, []byte) error   { return f.err }
func (f failingBackend) Delete(context.Context, string) error        { return f.err }

func sampleLines() []domain.CartLine {
	return []domain.CartLine{
		{ProductID: "p1", Title: "Book", Price: decimal.NewFromInt(100), Quantity: 2},
		{ProductID: "p2", Title: "Coat", Price: decimal.NewFromInt(50), Quantity: 1},
	}
}

func runBackendContract(t *testing.T, newBackend func(t *testing.T) Backend) {
	t.Run("MissingKeyIsEmptyCart", func(t *testing.T) {
		store := NewStore(newBackend(t), zap.NewNop())

		lines, err := store.LoadCart(context.Background(), "s1")
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("SaveThenLoad", func(t *testing.T) {
		store := NewStore(newBackend(t), zap.NewNop())
		ctx := context.Background()

		require.NoError(t, store.SaveCart(ctx, "s1", sampleLines()))

		lines, err := store.LoadCart(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, "p1", lines[0].ProductID)
		assert.Equal(t, 2, lines[0].Quantity)

		other, err := store.LoadCart(ctx, "s2")
		require.NoError(t, err)
		assert.Empty(t, other, "sessions are isolated")
	})

	t.Run("CorruptDataDegradesToEmpty", func(t *testing.T) {
		backend := newBackend(t)
		ctx := context.Background()
		require.NoError(t, backend.Set(ctx, CartKey("s1"), []byte("{{{")))

		core, logs := observer.New(zap.InfoLevel)
		store := NewStore(backend, zap.New(core))

		lines, err := store.LoadCart(ctx, "s1")
		require.NoError(t, err)
		assert.Empty(t, lines)
		assert.Equal(t, 1, logs.FilterMessage("discarding unreadable stored data").Len())
	})

	t.Run("Favorites", func(t *testing.T) {
		store := NewStore(newBackend(t), zap.NewNop())
		ctx := context.Background()

		favs := []domain.Favorite{{ProductID: "p1", Title: "Calc", Price: decimal.NewFromInt(25)}}
		require.NoError(t, store.SaveFavorites(ctx, "s1", favs))

		got, err := store.LoadFavorites(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Calc", got[0].Title)

		lines, err := store.LoadCart(ctx, "s1")
		require.NoError(t, err)
		assert.Empty(t, lines, "favorites live under their own key")
	})
}

func TestMemoryBackend(t *testing.T) {
	runBackendContract(t, func(t *testing.T) Backend { return NewMemoryBackend() })
}

func setupRedis(t *testing.T) (*RedisBackend, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisBackend(client), mr
}

func TestRedisBackend(t *testing.T) {
	runBackendContract(t, func(t *testing.T) Backend {
		b, _ := setupRedis(t)
		return b
	})
}

func TestRedisBackend_WellKnownKeyWithoutExpiry(t *testing.T) {
	backend, mr := setupRedis(t)
	store := NewStore(backend, zap.NewNop())

	require.NoError(t, store.SaveCart(context.Background(), "abc", sampleLines()))

	assert.True(t, mr.Exists("cart:abc"))
	assert.Zero(t, mr.TTL("cart:abc"))
}

func TestRedisBackend_WatchersShareOneSubscription(t *testing.T) {
	backend, mr := setupRedis(t)
	t.Cleanup(func() { _ = backend.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 50; i++ {
		_, err := backend.Watch(ctx, CartKey(fmt.Sprintf("s%d", i)))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, mr.PubSubNumPat())
	assert.Equal(t, 50, backend.watching())

	cancel()
	require.Eventually(t, func() bool { return backend.watching() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, mr.PubSubNumPat())
}

func TestRedisBackend_CloseEndsWatches(t *testing.T) {
	backend, _ := setupRedis(t)

	changes, err := backend.Watch(context.Background(), CartKey("s1"))
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	_, ok := <-changes
	assert.False(t, ok)
}

func TestMongoBackend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	n := 0
	runBackendContract(t, func(t *testing.T) Backend {
		n++
		backend, closeFn, err := OpenMongoBackend(ctx, uri, "testdb_"+string(rune('a'+n)))
		require.NoError(t, err)
		t.Cleanup(closeFn)
		return backend
	})
}

func TestWatch(t *testing.T) {
	backends := map[string]func(t *testing.T) Backend{
		"memory": func(t *testing.T) Backend { return NewMemoryBackend() },
		"redis": func(t *testing.T) Backend {
			b, _ := setupRedis(t)
			return b
		},
	}

	for name, newBackend := range backends {
		t.Run(name, func(t *testing.T) {
			store := NewStore(newBackend(t), zap.NewNop())
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			changes, err := store.WatchCart(ctx, "s1")
			require.NoError(t, err)
			require.NotNil(t, changes)

			require.NoError(t, store.SaveCart(context.Background(), "s2", sampleLines()))
			require.NoError(t, store.SaveCart(context.Background(), "s1", sampleLines()))

			select {
			case <-changes:
			case <-time.After(2 * time.Second):
				t.Fatal("no change notification")
			}

			cancel()
			require.Eventually(t, func() bool {
				select {
				case _, ok := <-changes:
					return !ok
				default:
					return false
				}
			}, 2*time.Second, 10*time.Millisecond)
		})
	}
}

func TestWatch_UnsupportedBackend(t *testing.T) {
	store := NewStore(failingBackend{}, zap.NewNop())

	changes, err := store.WatchCart(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, changes)
}

func TestStore_BackendFailureIsNetworkFailure(t *testing.T) {
	store := NewStore(failingBackend{err: errors.New("connection refused")}, zap.NewNop())
	ctx := context.Background()

	_, err := store.LoadCart(ctx, "s1")
	assert.ErrorIs(t, err, apperr.Of(apperr.NetworkFailure))

	err = store.SaveCart(ctx, "s1", sampleLines())
	assert.ErrorIs(t, err, apperr.Of(apperr.NetworkFailure))
}
