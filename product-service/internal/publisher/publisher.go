package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RajDalvi08/CamousKart/pkg/events"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher announces catalog changes to the storefront.
type Publisher interface {
	Publish(ctx context.Context, evt events.CatalogChanged) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
	logger  *zap.Logger
}

func NewKafkaPublisher(logger *zap.Logger, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  events.CatalogTopic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return &KafkaPublisher{writer: w, timeout: 5 * time.Second, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt events.CatalogChanged) error {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// keyed by category so events for one category stay ordered
	msg := kafka.Message{
		Key:   []byte(evt.Category),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", evt.Type, err)
	}

	p.logger.Debug("catalog event published",
		zap.String("type", evt.Type),
		zap.String("category", evt.Category),
		zap.String("product_id", evt.ProductID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, events.CatalogChanged) error { return nil }
func (Nop) Close() error                                         { return nil }
