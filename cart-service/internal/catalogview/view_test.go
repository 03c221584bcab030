package catalogview

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/apperr"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/broadcast"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	mu       sync.Mutex
	calls    int
	paths    []string
	products []domain.Product
	err      error
	// release gates every fetch when non-nil.
	release chan struct{}
}

func (f *fakeFetcher) FetchCategory(_ context.Context, path string) ([]domain.Product, error) {
	f.mu.Lock()
	f.calls++
	f.paths = append(f.paths, path)
	f.mu.Unlock()

	if f.release != nil {
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products, f.err
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var books = Category{Name: "Books", DisplayLabel: "Books", FetchPath: "/api/products/category/Books", ErrorMessage: "Failed to load books."}

func TestPartition(t *testing.T) {
	products := []domain.Product{
		{ID: "1", Condition: "new"},
		{ID: "2", Condition: "used"},
		{ID: "3", Condition: "new"},
		{ID: "4", Condition: "refurbished"},
		{ID: "5", Condition: ""},
		{ID: "6", Condition: "New"},
	}

	l := Partition(products)
	assert.Equal(t, []string{"1", "3"}, ids(l.New))
	assert.Equal(t, []string{"2", "4", "5", "6"}, ids(l.Used))
	assert.Equal(t, len(products), l.Len())
}

func TestPartition_Empty(t *testing.T) {
	l := Partition(nil)
	assert.NotNil(t, l.New)
	assert.NotNil(t, l.Used)
	assert.Zero(t, l.Len())
}

func TestView_LoadsOnMount(t *testing.T) {
	f := &fakeFetcher{products: []domain.Product{{ID: "1", Condition: "new"}, {ID: "2", Condition: "used"}}}
	v := NewView(books, f, broadcast.New(), zap.NewNop())

	assert.Equal(t, StateLoading, v.Snapshot().State)

	v.Mount(context.Background())
	defer v.Unmount()

	require.Eventually(t, func() bool { return v.Snapshot().State == StateLoaded }, time.Second, 5*time.Millisecond)
	snap := v.Snapshot()
	assert.Equal(t, []string{"1"}, ids(snap.Listing.New))
	assert.Equal(t, []string{"2"}, ids(snap.Listing.Used))
	assert.Empty(t, snap.Error)
	assert.Equal(t, []string{books.FetchPath}, f.paths)
}

func TestView_ErrorState(t *testing.T) {
	f := &fakeFetcher{err: apperr.Wrap(apperr.NetworkFailure, "", errors.New("connection refused"))}
	v := NewView(books, f, broadcast.New(), zap.NewNop())
	v.Mount(context.Background())
	defer v.Unmount()

	require.Eventually(t, func() bool { return v.Snapshot().State == StateError }, time.Second, 5*time.Millisecond)
	snap := v.Snapshot()
	assert.Equal(t, "Failed to load books.", snap.Error)
	assert.Zero(t, snap.Listing.Len())
}

func TestView_ServerMessageWins(t *testing.T) {
	f := &fakeFetcher{err: apperr.New(apperr.ServerRejection, "Server error")}
	v := NewView(books, f, broadcast.New(), zap.NewNop())
	v.Mount(context.Background())
	defer v.Unmount()

	require.Eventually(t, func() bool { return v.Snapshot().State == StateError }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Server error", v.Snapshot().Error)
}

func TestView_RefetchesOnSignal(t *testing.T) {
	bus := broadcast.New()
	f := &fakeFetcher{products: []domain.Product{{ID: "1", Condition: "new"}}}
	v := NewView(books, f, bus, zap.NewNop())
	v.Mount(context.Background())
	defer v.Unmount()

	require.Eventually(t, func() bool { return v.Fetches() == 1 }, time.Second, 5*time.Millisecond)

	f.mu.Lock()
	f.products = append(f.products, domain.Product{ID: "2", Condition: "used"})
	f.mu.Unlock()
	bus.Publish()

	require.Eventually(t, func() bool { return v.Fetches() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, v.Snapshot().Listing.Len())
}

func TestView_CoalescesSignalsDuringFetch(t *testing.T) {
	f := &fakeFetcher{release: make(chan struct{})}
	v := NewView(books, f, broadcast.New(), zap.NewNop())
	ctx := context.Background()
	v.Mount(ctx)
	defer v.Unmount()

	require.Eventually(t, func() bool { return f.Calls() == 1 }, time.Second, 5*time.Millisecond)
	for i := 0; i < 10; i++ {
		v.Refresh(ctx)
	}

	f.release <- struct{}{}
	require.Eventually(t, func() bool { return f.Calls() == 2 }, time.Second, 5*time.Millisecond)
	f.release <- struct{}{}

	require.Eventually(t, func() bool { return v.Fetches() == 2 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return f.Calls() > 2 }, 100*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, StateLoaded, v.Snapshot().State)
}

func TestView_UnmountDiscardsLateResult(t *testing.T) {
	bus := broadcast.New()
	f := &fakeFetcher{release: make(chan struct{}), products: []domain.Product{{ID: "1", Condition: "new"}}}
	v := NewView(books, f, bus, zap.NewNop())
	v.Mount(context.Background())

	require.Eventually(t, func() bool { return f.Calls() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, bus.Subscribers())

	v.Unmount()
	assert.Zero(t, bus.Subscribers())
	f.release <- struct{}{}

	assert.Never(t, func() bool { return v.Fetches() > 0 }, 100*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, StateLoading, v.Snapshot().State)

	bus.Publish()
	assert.Never(t, func() bool { return f.Calls() > 1 }, 50*time.Millisecond, 10*time.Millisecond)
}

func TestView_UnmountCancelsContext(t *testing.T) {
	started := make(chan context.Context, 1)
	v := NewView(books, fetcherFunc(func(ctx context.Context, _ string) ([]domain.Product, error) {
		started <- ctx
		<-ctx.Done()
		return nil, ctx.Err()
	}), broadcast.New(), zap.NewNop())

	v.Mount(context.Background())
	ctx := <-started
	v.Unmount()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("fetch context was not cancelled")
	}
	assert.Never(t, func() bool { return v.Snapshot().State == StateError }, 50*time.Millisecond, 10*time.Millisecond)
}

// stickySubscriber hands out buffered channels that unsubscribe leaves open,
// so a signal can still sit in a channel after its view unmounted.
type stickySubscriber struct {
	mu    sync.Mutex
	chans []chan struct{}
}

func (s *stickySubscriber) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.chans = append(s.chans, ch)
	return ch, func() {}
}

func (s *stickySubscriber) channel(i int) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chans[i]
}

func TestView_RemountIgnoresSignalsOfPreviousMount(t *testing.T) {
	sub := &stickySubscriber{}
	var calls atomic.Int32
	v := NewView(books, fetcherFunc(func(ctx context.Context, _ string) ([]domain.Product, error) {
		calls.Add(1)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []domain.Product{{ID: "1", Condition: "new"}}, nil
	}), sub, zap.NewNop())

	v.Mount(context.Background())
	require.Eventually(t, func() bool { return v.Fetches() == 1 }, time.Second, 5*time.Millisecond)
	v.Unmount()

	v.Mount(context.Background())
	defer v.Unmount()
	require.Eventually(t, func() bool { return v.Fetches() == 2 }, time.Second, 5*time.Millisecond)

	sub.channel(0) <- struct{}{}
	assert.Never(t, func() bool { return calls.Load() > 2 }, 100*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, StateLoaded, v.Snapshot().State)

	sub.channel(1) <- struct{}{}
	require.Eventually(t, func() bool { return v.Fetches() == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, StateLoaded, v.Snapshot().State)
}

func TestRegistry(t *testing.T) {
	f := &fakeFetcher{}
	bus := broadcast.New()
	r := NewRegistry(DefaultCategories, f, bus, zap.NewNop())

	for _, name := range []string{"books", "Book", "BOOKS", "lab coats", "egkit", "EgContainers"} {
		_, ok := r.View(name)
		assert.True(t, ok, name)
	}
	_, ok := r.View("furniture")
	assert.False(t, ok)

	r.MountAll(context.Background())
	assert.Equal(t, len(DefaultCategories), bus.Subscribers())
	require.Eventually(t, func() bool { return f.Calls() == len(DefaultCategories) }, time.Second, 5*time.Millisecond)

	snaps := r.Snapshots()
	require.Len(t, snaps, len(DefaultCategories))
	assert.Equal(t, "Books", snaps[0].Category)
	assert.Equal(t, "EG Containers", snaps[5].DisplayLabel)

	r.UnmountAll()
	assert.Zero(t, bus.Subscribers())
}

type fetcherFunc func(ctx context.Context, path string) ([]domain.Product, error)

func (f fetcherFunc) FetchCategory(ctx context.Context, path string) ([]domain.Product, error) {
	return f(ctx, path)
}

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}
