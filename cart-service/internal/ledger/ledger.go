// Package ledger is the per-session shopping cart: an ordered set of lines
// keyed by product id, persisted on every mutation.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/apperr"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrMissingProductID = apperr.New(apperr.Validation, "Product has no id")
	ErrInvalidQuantity  = apperr.New(apperr.Validation, "Quantity must be at least 1")
)

// Store persists carts. Load must return an empty cart, not an error, for
// unreadable data.
type Store interface {
	LoadCart(ctx context.Context, session string) ([]domain.CartLine, error)
	SaveCart(ctx context.Context, session string, lines []domain.CartLine) error
}

// Watcher is implemented by stores that report writes to a session's cart.
type Watcher interface {
	WatchCart(ctx context.Context, session string) (<-chan struct{}, error)
}

// Ledger mutations are load-mutate-save against the store; concurrent
// writers on one session are last-write-wins.
type Ledger struct {
	mu       sync.Mutex
	store    Store
	session  string
	notifier Notifier
	logger   *zap.Logger

	lines []domain.CartLine
	index map[string]int
}

func Open(ctx context.Context, store Store, session string, notifier Notifier, logger *zap.Logger) (*Ledger, error) {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	l := &Ledger{
		store:    store,
		session:  session,
		notifier: notifier,
		logger:   logger,
	}
	if err := l.Reload(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) Session() string { return l.session }

// Reload replaces the in-memory copy with the stored cart.
func (l *Ledger) Reload(ctx context.Context) error {
	lines, err := l.store.LoadCart(ctx, l.session)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	l.mu.Lock()
	l.set(lines)
	l.mu.Unlock()
	return nil
}

// AddItem increments the line for p.ID by delta, refreshing its title, price
// and image, or appends a new line.
func (l *Ledger) AddItem(ctx context.Context, p domain.Product, delta int) error {
	if p.ID == "" {
		return ErrMissingProductID
	}
	if delta < 1 {
		return ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.snapshot()
	if i, ok := l.index[p.ID]; ok {
		next[i].Quantity += delta
		next[i].Title = p.Title
		next[i].Price = p.Price
		next[i].Image = p.Image()
	} else {
		next = append(next, domain.CartLine{
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Image:     p.Image(),
			Quantity:  delta,
		})
	}

	if err := l.commit(ctx, next); err != nil {
		return err
	}
	l.notifier.Notify(fmt.Sprintf("'%s' added to cart!", p.Title))
	return nil
}

// RemoveOneUnit decrements the line for productID, removing it at zero.
// Unknown ids are a no-op.
func (l *Ledger) RemoveOneUnit(ctx context.Context, productID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[productID]
	if productID == "" || !ok {
		return nil
	}

	next := l.snapshot()
	if next[i].Quantity > 1 {
		next[i].Quantity--
	} else {
		next = append(next[:i], next[i+1:]...)
	}
	return l.commit(ctx, next)
}

// RemoveLine deletes the line whose Key matches, whatever its quantity.
func (l *Ledger) RemoveLine(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos := -1
	for i, line := range l.lines {
		if line.Key() == key {
			pos = i
			break
		}
	}
	if key == "" || pos < 0 {
		return nil
	}

	next := l.snapshot()
	next = append(next[:pos], next[pos+1:]...)
	return l.commit(ctx, next)
}

func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commit(ctx, []domain.CartLine{})
}

// Total is the sum of price times quantity over the prices captured when
// each line was added.
func (l *Ledger) Total() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Total(l.lines)
}

// Count is the number of units in the cart.
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, line := range l.lines {
		n += line.Quantity
	}
	return n
}

func (l *Ledger) Lines() []domain.CartLine {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

func (l *Ledger) IsEmpty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines) == 0
}

// Watch keeps the in-memory copy in step with writes from other processes
// until ctx is done. It reports false for stores without change
// notification.
func (l *Ledger) Watch(ctx context.Context) (bool, error) {
	w, ok := l.store.(Watcher)
	if !ok {
		return false, nil
	}
	changes, err := w.WatchCart(ctx, l.session)
	if err != nil {
		return false, err
	}
	if changes == nil {
		return false, nil
	}

	go func() {
		for range changes {
			if err := l.Reload(ctx); err != nil && ctx.Err() == nil {
				l.logger.Warn("cart reload failed", zap.String("session", l.session), zap.Error(err))
			}
		}
	}()
	return true, nil
}

// Total sums price times quantity.
func Total(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (l *Ledger) commit(ctx context.Context, next []domain.CartLine) error {
	if err := l.store.SaveCart(ctx, l.session, next); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	l.set(next)
	return nil
}

func (l *Ledger) set(lines []domain.CartLine) {
	l.lines = lines
	l.index = make(map[string]int, len(lines))
	for i, line := range lines {
		if line.ProductID != "" {
			l.index[line.ProductID] = i
		}
	}
}

func (l *Ledger) snapshot() []domain.CartLine {
	out := make([]domain.CartLine, len(l.lines))
	copy(out, l.lines)
	return out
}
