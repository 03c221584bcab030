package checkout

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultIdleTimeout is how long an untouched session keeps its checkout.
const DefaultIdleTimeout = 30 * time.Minute

type Option func(*Checkout)

// WithAfterFunc replaces time.AfterFunc for the post-success redirect.
func WithAfterFunc(after AfterFunc) Option {
	return func(c *Checkout) { c.after = after }
}

// WithPaymentTimeout sets how long a gateway payment may stay unanswered
// before it is abandoned.
func WithPaymentTimeout(d time.Duration) Option {
	return func(c *Checkout) {
		if d > 0 {
			c.timeout = d
		}
	}
}

type entry struct {
	checkout *Checkout
	lastUsed time.Time
}

// Registry hands every request of a session the same Checkout, so two tabs
// of one session share a single order intent.
type Registry struct {
	mu       sync.Mutex
	gateway  PaymentGateway
	log      *zap.Logger
	opts     []Option
	now      func() time.Time
	sessions map[string]*entry
}

func NewRegistry(gateway PaymentGateway, log *zap.Logger, opts ...Option) *Registry {
	return &Registry{
		gateway:  gateway,
		log:      log,
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// For returns the session's checkout, creating it over cart on first use.
func (r *Registry) For(session string, cart Cart) *Checkout {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[session]; ok {
		e.lastUsed = r.now()
		e.checkout.rebind(cart)
		return e.checkout
	}
	c := New(cart, r.gateway, r.log.With(zap.String("session", session)), r.opts...)
	r.sessions[session] = &entry{checkout: c, lastUsed: r.now()}
	return c
}

// Run forgets checkouts untouched for longer than idle until ctx is done.
// A checkout still waiting on the gateway is kept until its payment times
// out.
func (r *Registry) Run(ctx context.Context, idle time.Duration) {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	interval := time.Minute
	if idle < interval {
		interval = idle
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle(idle)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Registry) evictIdle(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, e := range r.sessions {
		if !e.lastUsed.Before(cutoff) || !e.checkout.settled() {
			continue
		}
		delete(r.sessions, id)
		evicted++
	}
	if evicted > 0 {
		r.log.Debug("forgot idle checkouts", zap.Int("evicted", evicted), zap.Int("open", len(r.sessions)))
	}
	return evicted
}

// Len reports how many sessions hold a checkout.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
