package ledger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultIdleTimeout is how long an untouched session keeps its ledger
	// and change subscription open.
	DefaultIdleTimeout = 30 * time.Minute

	sweepInterval = time.Minute
)

type SessionStore interface {
	Store
	FavoritesStore
}

type openCart struct {
	ledger   *Ledger
	watched  bool
	stop     context.CancelFunc
	lastUsed time.Time
}

type SessionsOption func(*Sessions)

// WithIdleTimeout sets how long a session may go untouched before its
// ledger is closed.
func WithIdleTimeout(d time.Duration) SessionsOption {
	return func(s *Sessions) {
		if d > 0 {
			s.idle = d
		}
	}
}

// Sessions keeps one Ledger per active session. Watched ledgers are
// reconciled by change notifications; the rest are reloaded from the store
// on every lookup. Sessions idle for longer than the idle timeout are
// closed and their watch released; the next lookup opens them again.
type Sessions struct {
	ctx   context.Context
	store SessionStore
	board *Board
	log   *zap.Logger
	idle  time.Duration
	now   func() time.Time

	mu    sync.Mutex
	carts map[string]*openCart
}

// NewSessions sweeps idle sessions until ctx is done.
func NewSessions(ctx context.Context, store SessionStore, board *Board, log *zap.Logger, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		ctx:   ctx,
		store: store,
		board: board,
		log:   log,
		idle:  DefaultIdleTimeout,
		now:   time.Now,
		carts: make(map[string]*openCart),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.sweepLoop()
	return s
}

func (s *Sessions) Cart(ctx context.Context, session string) (*Ledger, error) {
	s.mu.Lock()
	oc, ok := s.carts[session]
	if ok {
		oc.lastUsed = s.now()
	}
	s.mu.Unlock()

	if ok {
		if !oc.watched {
			if err := oc.ledger.Reload(ctx); err != nil {
				return nil, err
			}
		}
		return oc.ledger, nil
	}

	l, err := Open(ctx, s.store, session, s.board.For(session), s.log.With(zap.String("session", session)))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.carts[session]; ok {
		existing.lastUsed = s.now()
		return existing.ledger, nil
	}
	watchCtx, stop := context.WithCancel(s.ctx)
	watched, err := l.Watch(watchCtx)
	if err != nil {
		s.log.Warn("cart change notifications unavailable", zap.String("session", session), zap.Error(err))
	}
	s.carts[session] = &openCart{ledger: l, watched: watched, stop: stop, lastUsed: s.now()}
	return l, nil
}

// Favorites are read fresh on every call.
func (s *Sessions) Favorites(ctx context.Context, session string) (*Favorites, error) {
	return OpenFavorites(ctx, s.store, session)
}

func (s *Sessions) Flash(session string) string {
	return s.board.Message(session)
}

// Open reports how many sessions currently hold a ledger.
func (s *Sessions) Open() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

func (s *Sessions) sweepLoop() {
	interval := sweepInterval
	if s.idle < interval {
		interval = s.idle
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictIdle()
		case <-s.ctx.Done():
			return
		}
	}
}

// evictIdle closes sessions untouched for longer than the idle timeout.
func (s *Sessions) evictIdle() int {
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, oc := range s.carts {
		if !oc.lastUsed.Before(cutoff) {
			continue
		}
		oc.stop()
		delete(s.carts, id)
		evicted++
	}
	if evicted > 0 {
		s.log.Debug("closed idle sessions", zap.Int("evicted", evicted), zap.Int("open", len(s.carts)))
	}
	return evicted
}
