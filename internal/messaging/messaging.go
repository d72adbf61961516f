package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/egannguyen/go-order-management/internal/entity"
)

// MetadataEventType and MetadataPartitionKey are the metadata keys carried
// on every published message. The partition key keeps all events for one
// aggregate on one Kafka partition.
const (
	MetadataEventType    = "event_type"
	MetadataPartitionKey = "partition_key"
)

// Publisher publishes domain events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event entity.Event) error
	Close() error
}

// EventPublisher adapts a watermill message.Publisher (Kafka in production,
// gochannel in tests) to the domain Publisher interface.
type EventPublisher struct {
	pub message.Publisher
}

func NewEventPublisher(pub message.Publisher) *EventPublisher {
	return &EventPublisher{pub: pub}
}

func (p *EventPublisher) PublishEvent(ctx context.Context, topic string, key string, event entity.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(MetadataEventType, event.EventType())
	msg.Metadata.Set(MetadataPartitionKey, key)

	if err := p.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.EventType(), err)
	}
	return nil
}

func (p *EventPublisher) Close() error {
	return p.pub.Close()
}

// NopPublisher drops all events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishEvent(context.Context, string, string, entity.Event) error { return nil }

func (NopPublisher) Close() error { return nil }
