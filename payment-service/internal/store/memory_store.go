package store

import (
	"strings"
	"sync"
	"time"

	"github.com/RajDalvi08/CamousKart/payment-service/internal/domain"
	"github.com/google/uuid"
)

const (
	// OrderTTL is how long an unpaid order stays payable
	OrderTTL = 30 * time.Minute

	// CleanupInterval is how often expired orders are swept
	CleanupInterval = time.Minute

	// retention keeps expired orders visible for lookups for a while
	retention = time.Hour
)

// MemoryStore implements OrderStore with in-memory storage
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	now    func() time.Time

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		orders:      make(map[string]*domain.Order),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func (s *MemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireOrders()
		case <-s.stopCleanup:
			return
		}
	}
}

// expireOrders marks stale orders expired and forgets them after retention.
func (s *MemoryStore) expireOrders() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, order := range s.orders {
		if !order.IsExpired(now) {
			continue
		}
		order.Status = domain.OrderStatusExpired
		if now.Sub(order.ExpiresAt) > retention {
			delete(s.orders, id)
		}
	}
}

func (s *MemoryStore) Create(amount int64, currency, receipt string) (*domain.Order, error) {
	now := s.now().UTC()
	order := &domain.Order{
		ID:        "order_" + shortID(),
		Amount:    amount,
		Currency:  currency,
		Receipt:   receipt,
		Status:    domain.OrderStatusCreated,
		CreatedAt: now,
		ExpiresAt: now.Add(OrderTTL),
	}
	if order.Receipt == "" {
		order.Receipt = "receipt_" + shortID()
	}

	s.mu.Lock()
	s.orders[order.ID] = order
	s.mu.Unlock()

	cp := *order
	return &cp, nil
}

func (s *MemoryStore) Get(id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *order
	if cp.Status == domain.OrderStatusCreated && cp.IsExpired(s.now()) {
		cp.Status = domain.OrderStatusExpired
	}
	return &cp, nil
}

func (s *MemoryStore) Close() error {
	close(s.stopCleanup)
	s.wg.Wait()
	return nil
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}
