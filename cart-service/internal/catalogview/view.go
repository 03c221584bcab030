package catalogview

import (
	"context"
	"sync"
	"time"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/apperr"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/domain"
	"go.uber.org/zap"
)

type State string

const (
	StateLoading State = "loading"
	StateError   State = "error"
	StateLoaded  State = "loaded"
)

type Fetcher interface {
	FetchCategory(ctx context.Context, fetchPath string) ([]domain.Product, error)
}

// Subscriber is the receiving side of the catalog change signal.
type Subscriber interface {
	Subscribe() (<-chan struct{}, func())
}

// Snapshot is what a view currently shows. Listing is only meaningful in
// StateLoaded and Error only in StateError.
type Snapshot struct {
	Category     string
	DisplayLabel string
	State        State
	Listing      Listing
	Error        string
	FetchedAt    time.Time
}

// View is the live listing of one category. While mounted it refetches on
// every change signal; signals that arrive during a fetch collapse into a
// single follow-up fetch.
type View struct {
	cfg     Category
	fetcher Fetcher
	bus     Subscriber
	log     *zap.Logger

	mu          sync.Mutex
	state       State
	listing     Listing
	errMsg      string
	fetchedAt   time.Time
	mounted     bool
	inFlight    bool
	pending     bool
	generation  uint64
	cancel      context.CancelFunc
	unsubscribe func()
	fetches     int
}

func NewView(cfg Category, fetcher Fetcher, bus Subscriber, log *zap.Logger) *View {
	return &View{
		cfg:     cfg,
		fetcher: fetcher,
		bus:     bus,
		log:     log.With(zap.String("category", cfg.Name)),
		state:   StateLoading,
		listing: Partition(nil),
	}
}

// Mount subscribes to change signals and starts the first fetch. Mounting
// an already mounted view does nothing.
func (v *View) Mount(ctx context.Context) {
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	signals, unsubscribe := v.bus.Subscribe()
	v.mounted = true
	v.cancel = cancel
	v.unsubscribe = unsubscribe
	generation := v.generation
	v.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				// a signal buffered before Unmount belongs to this mount only
				v.refresh(ctx, generation)
			}
		}
	}()
	v.refresh(ctx, generation)
}

// Unmount cancels the in-flight fetch and stops listening. Results that
// arrive afterwards are dropped.
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return
	}
	v.mounted = false
	v.generation++
	v.inFlight = false
	v.pending = false
	v.cancel()
	v.unsubscribe()
}

// Refresh starts a fetch, or marks one as pending when a fetch is already
// running.
func (v *View) Refresh(ctx context.Context) {
	v.mu.Lock()
	generation := v.generation
	v.mu.Unlock()
	v.refresh(ctx, generation)
}

func (v *View) refresh(ctx context.Context, generation uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted || generation != v.generation || ctx.Err() != nil {
		return
	}
	if v.inFlight {
		v.pending = true
		return
	}
	v.inFlight = true
	v.state = StateLoading
	go v.run(ctx, v.generation)
}

func (v *View) run(ctx context.Context, generation uint64) {
	for {
		products, err := v.fetcher.FetchCategory(ctx, v.cfg.FetchPath)

		v.mu.Lock()
		if generation != v.generation {
			v.mu.Unlock()
			return
		}
		v.fetches++
		v.apply(products, err)
		if !v.pending {
			v.inFlight = false
			v.mu.Unlock()
			return
		}
		v.pending = false
		v.state = StateLoading
		v.mu.Unlock()
	}
}

func (v *View) apply(products []domain.Product, err error) {
	if err != nil {
		v.log.Warn("failed to load category", zap.Error(err))
		v.state = StateError
		v.errMsg = apperr.MessageOf(err, v.cfg.ErrorMessage)
		v.listing = Partition(nil)
		return
	}
	v.state = StateLoaded
	v.errMsg = ""
	v.listing = Partition(products)
	v.fetchedAt = time.Now()
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Snapshot{
		Category:     v.cfg.Name,
		DisplayLabel: v.cfg.DisplayLabel,
		State:        v.state,
		Listing:      v.listing,
		Error:        v.errMsg,
		FetchedAt:    v.fetchedAt,
	}
}

// Fetches is the number of completed fetches whose result was applied.
func (v *View) Fetches() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fetches
}
