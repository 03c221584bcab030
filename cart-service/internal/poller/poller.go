// Package poller relays catalog events from Kafka onto the in-process
// broadcast bus.
package poller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/RajDalvi08/CamousKart/pkg/events"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Signaler is fired once per relevant catalog event.
type Signaler interface {
	Publish()
}

type Poller struct {
	reader  messageReader
	signal  Signaler
	log     *zap.Logger
	backoff time.Duration
}

// NewPoller joins a consumer group unique to this process so that every
// storefront instance sees every catalog event.
func NewPoller(signal Signaler, log *zap.Logger, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       events.CatalogTopic,
		GroupID:     "storefront-" + uuid.NewString(),
		StartOffset: kafka.LastOffset,
		MaxBytes:    10e6, // 10MB
	})
	return newPoller(reader, signal, log)
}

func newPoller(reader messageReader, signal Signaler, log *zap.Logger) *Poller {
	return &Poller{reader: reader, signal: signal, log: log, backoff: time.Second}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		err := p.relay(ctx)
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil && ctx.Err() == nil {
			p.log.Warn("error reading catalog event", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.backoff):
			}
		}
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.log.Warn("error closing reader", zap.Error(err))
	}
}

func (p *Poller) relay(ctx context.Context) error {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		return err
	}

	eventType := headerValue(m, "event_type")
	var payload events.CatalogChanged
	if err := json.Unmarshal(m.Value, &payload); err != nil {
		if eventType == "" {
			p.log.Warn("error parsing catalog event", zap.Error(err), zap.Int64("offset", m.Offset))
			return nil
		}
	} else if eventType == "" {
		eventType = payload.Type
	}

	switch eventType {
	case events.TypeProductPublished, events.TypeCategoryPurged:
		p.log.Debug("catalog changed",
			zap.String("event_type", eventType),
			zap.String("category", payload.Category))
		p.signal.Publish()
	default:
		p.log.Debug("ignoring catalog event", zap.String("event_type", eventType))
	}
	return nil
}

func headerValue(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
