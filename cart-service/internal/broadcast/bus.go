// Package broadcast is an in-process, payload-less signal bus. A signal
// means "the catalog may have changed"; subscribers decide what to refetch.
package broadcast

import "sync"

// Bus fans a signal out to every subscriber without blocking the publisher.
// Each subscriber channel holds at most one pending signal, so bursts
// collapse into one.
type Bus struct {
	mu     sync.Mutex
	subs   map[uint64]chan struct{}
	nextID uint64
}

func New() *Bus {
	return &Bus{subs: make(map[uint64]chan struct{})}
}

// Subscribe returns the signal channel and a function that detaches it.
// The channel is closed on unsubscribe; calling unsubscribe twice is safe.
func (b *Bus) Subscribe() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan struct{}, 1)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

// Publish signals every current subscriber.
func (b *Bus) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
