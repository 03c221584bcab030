package repository

import (
	"context"
	"sync"
)

// MemoryBackend is a process-local Backend with write notifications.
type MemoryBackend struct {
	mu       sync.RWMutex
	data     map[string][]byte
	watchers map[string][]chan struct{}
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data:     make(map[string][]byte),
		watchers: make(map[string][]chan struct{}),
	}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.data[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	m.notify(key)
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	m.notify(key)
	return nil
}

func (m *MemoryBackend) Watch(ctx context.Context, key string) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	m.mu.Lock()
	m.watchers[key] = append(m.watchers[key], ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		subs := m.watchers[key]
		for i, c := range subs {
			if c == ch {
				m.watchers[key] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(m.watchers[key]) == 0 {
			delete(m.watchers, key)
		}
		close(ch)
	}()
	return ch, nil
}

func (m *MemoryBackend) notify(key string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ch := range m.watchers[key] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
