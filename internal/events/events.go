// Package events carries domain facts out of the write path.
//
// Two mechanisms live here:
//   - Dispatcher delivers OrderChange values to in-process reactive handlers
//     (kitchen monitor, order notifier) after the order write has committed.
//   - Publisher forwards integration events to an external bus (RabbitMQ or
//     Kafka) for other consumers. A no-op publisher is used when no bus is
//     configured.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tbourn/go-restaurant-ops/internal/config"
)

// Event type tags published on the bus.
const (
	TypeNotificationCreated = "notification.created"
	TypeKitchenStatus       = "kitchen.status"
)

// Message is the bus envelope. Key partitions related messages (the
// restaurant id) so consumers see them in order.
type Message struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Encode renders m as JSON.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Publisher sends messages to an external bus.
type Publisher interface {
	Publish(ctx context.Context, m Message) error
	Close() error
}

// Nop discards every message.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Message) error { return nil }

// Close implements Publisher.
func (Nop) Close() error { return nil }

// NewPublisher builds the publisher selected by cfg.Driver.
func NewPublisher(cfg config.EventsConfig) (Publisher, error) {
	switch cfg.Driver {
	case "", "none":
		return Nop{}, nil
	case "amqp":
		return DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
	case "kafka":
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		return nil, fmt.Errorf("unsupported events driver %q", cfg.Driver)
	}
}
