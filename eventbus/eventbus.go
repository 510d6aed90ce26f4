package eventbus

import (
	"context"
	"encoding/json"
)

// Topic the AI pipeline publishes its domain events on.
const TopicAIEvents = "legispuls.ai.events"

// Event is the wire envelope carried by a Kafka message.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Publisher publishes domain events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}

// NewEvent wraps a payload struct into the wire envelope.
func NewEvent(id, eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{ID: id, Type: eventType, Payload: data}, nil
}

// NoopPublisher is used when Kafka is disabled in config.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, Event) error { return nil }

func (NoopPublisher) Close() {}
