package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/domain"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// unwatchedStore hides the store's change notifications.
type unwatchedStore struct {
	SessionStore
}

// watchRecorder remembers the context of every cart watch it hands out.
type watchRecorder struct {
	*repository.Store

	mu      sync.Mutex
	watches []context.Context
}

func (w *watchRecorder) WatchCart(ctx context.Context, session string) (<-chan struct{}, error) {
	w.mu.Lock()
	w.watches = append(w.watches, ctx)
	w.mu.Unlock()
	return w.Store.WatchCart(ctx, session)
}

func (w *watchRecorder) released() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, ctx := range w.watches {
		if ctx.Err() != nil {
			n++
		}
	}
	return n
}

func withClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) { s.now = now }
}

func TestSessions_ReusesLedgerAndPostsFlash(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store, _ := newStore()
	s := NewSessions(ctx, store, NewBoard(time.Minute), zap.NewNop())

	a, err := s.Cart(ctx, "s1")
	require.NoError(t, err)
	b, err := s.Cart(ctx, "s1")
	require.NoError(t, err)
	assert.Same(t, a, b)

	require.NoError(t, a.AddItem(ctx, product("p1", "Lab Coat", "300"), 1))
	assert.Equal(t, "'Lab Coat' added to cart!", s.Flash("s1"))
	assert.Empty(t, s.Flash("s2"))
}

func TestSessions_WatchedLedgerFollowsOtherWriters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store, _ := newStore()
	s := NewSessions(ctx, store, NewBoard(0), zap.NewNop())

	l, err := s.Cart(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, store.SaveCart(ctx, "s1", []domain.CartLine{{ProductID: "p9", Title: "x", Quantity: 4}}))
	assert.Eventually(t, func() bool { return l.Count() == 4 }, time.Second, 5*time.Millisecond)
}

func TestSessions_UnwatchedLedgerReloadsOnLookup(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(repository.NewMemoryBackend(), zap.NewNop())
	s := NewSessions(ctx, unwatchedStore{store}, NewBoard(0), zap.NewNop())

	l, err := s.Cart(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, l.IsEmpty())

	require.NoError(t, store.SaveCart(ctx, "s1", []domain.CartLine{{ProductID: "p9", Title: "x", Quantity: 2}}))
	l, err = s.Cart(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, l.Count())
}

func TestSessions_Favorites(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()
	s := NewSessions(ctx, store, NewBoard(0), zap.NewNop())

	f, err := s.Favorites(ctx, "s1")
	require.NoError(t, err)
	_, err = f.Toggle(ctx, product("p1", "Book", "1"))
	require.NoError(t, err)

	again, err := s.Favorites(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, again.Contains("p1"))
}

func TestSessions_IdleSessionsReleaseTheirWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store, _ := newStore()
	rec := &watchRecorder{Store: store}
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions(ctx, rec, NewBoard(0), zap.NewNop(), withClock(func() time.Time { return clock }))

	for i := 0; i < 200; i++ {
		_, err := s.Cart(ctx, fmt.Sprintf("one-shot-%d", i))
		require.NoError(t, err)
	}
	require.Equal(t, 200, s.Open())

	clock = clock.Add(DefaultIdleTimeout / 2)
	_, err := s.Cart(ctx, "one-shot-7")
	require.NoError(t, err)

	clock = clock.Add(DefaultIdleTimeout/2 + time.Second)
	assert.Equal(t, 199, s.evictIdle())
	assert.Equal(t, 1, s.Open())
	assert.Equal(t, 199, rec.released())
}

func TestSessions_EvictedSessionReopensFromStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store, _ := newStore()
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions(ctx, store, NewBoard(0), zap.NewNop(),
		WithIdleTimeout(time.Hour), withClock(func() time.Time { return clock }))

	l, err := s.Cart(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, l.AddItem(ctx, product("p1", "Drafter", "450"), 2))

	clock = clock.Add(2 * time.Hour)
	require.Equal(t, 1, s.evictIdle())

	again, err := s.Cart(ctx, "s1")
	require.NoError(t, err)
	assert.NotSame(t, l, again)
	assert.Equal(t, 2, again.Count())
}
