package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

const changePrefix = "changes:"

// RedisBackend stores values under their key with no expiry and publishes
// a change message on every write so other instances can reconcile. All
// watchers share one pattern subscription.
type RedisBackend struct {
	client *redis.Client

	mu       sync.Mutex
	pubsub   *redis.PubSub
	watchers map[string]map[chan struct{}]struct{}
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{
		client:   client,
		watchers: make(map[string]map[chan struct{}]struct{}),
	}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, value, 0)
		pipe.Publish(ctx, changeChannel(key), "set")
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.Publish(ctx, changeChannel(key), "del")
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Watch reports writes to key until ctx is done.
func (r *RedisBackend) Watch(ctx context.Context, key string) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	r.mu.Lock()
	if err := r.subscribe(ctx); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	if r.watchers[key] == nil {
		r.watchers[key] = make(map[chan struct{}]struct{})
	}
	r.watchers[key][ch] = struct{}{}
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		defer r.mu.Unlock()
		r.release(key, ch)
	}()
	return ch, nil
}

// Close drops the shared subscription and every open watch.
func (r *RedisBackend) Close() error {
	r.mu.Lock()
	for key, subs := range r.watchers {
		for ch := range subs {
			r.release(key, ch)
		}
	}
	pubsub := r.pubsub
	r.pubsub = nil
	r.mu.Unlock()

	if pubsub == nil {
		return nil
	}
	return pubsub.Close()
}

// subscribe opens the shared subscription on first use. Caller holds r.mu.
func (r *RedisBackend) subscribe(ctx context.Context) error {
	if r.pubsub != nil {
		return nil
	}
	pubsub := r.client.PSubscribe(context.Background(), changePrefix+"*")
	// wait for the subscription to be confirmed so no write is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("redis subscribe failed: %w", err)
	}
	r.pubsub = pubsub
	go r.fanOut(pubsub.Channel())
	return nil
}

func (r *RedisBackend) fanOut(msgs <-chan *redis.Message) {
	for msg := range msgs {
		key := strings.TrimPrefix(msg.Channel, changePrefix)
		r.mu.Lock()
		for ch := range r.watchers[key] {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
		r.mu.Unlock()
	}
}

// release is a no-op for channels already released. Caller holds r.mu.
func (r *RedisBackend) release(key string, ch chan struct{}) {
	subs, ok := r.watchers[key]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(r.watchers, key)
	}
}

func (r *RedisBackend) watching() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, subs := range r.watchers {
		n += len(subs)
	}
	return n
}

func changeChannel(key string) string {
	return changePrefix + key
}
