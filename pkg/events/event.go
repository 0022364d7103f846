package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event defines the contract for all domain events.
type Event interface {
	// EventType returns the dotted event code, e.g. "role.changed".
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Publisher is what services depend on; the NATS publisher implements it.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops events. Used when the bus is unavailable.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

type envelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

// Encode wraps the payload with its type and time so a subscriber can rebuild it.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(envelope{Type: e.EventType(), OccurredAt: e.Timestamp(), Data: e.Payload()})
}

func Decode(data []byte) (BaseEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return BaseEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if env.Type == "" {
		return BaseEvent{}, fmt.Errorf("decode event: missing type")
	}
	return BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}, nil
}
