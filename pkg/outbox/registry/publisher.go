package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/collabinvest/cil-storefront/pkg/db/models"
	"github.com/collabinvest/cil-storefront/pkg/enums"
	"github.com/collabinvest/cil-storefront/pkg/outbox"
	"github.com/collabinvest/cil-storefront/pkg/outbox/payloads"
	"github.com/google/uuid"
)

// EventDescriptor routes one order event type to a topic.
type EventDescriptor struct {
	EventType enums.OutboxEventType
	Topic     string
	decode    func(json.RawMessage) (payloads.OrderEvent, error)
}

// ResolvedEvent is an outbox row whose envelope and payload decoded cleanly.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    payloads.OrderEvent
}

// OrderNumber is the broker message key.
func (r *ResolvedEvent) OrderNumber() string {
	if r.Payload == nil {
		return ""
	}
	return r.Payload.OrderKey()
}

// EventRegistry knows how to decode every order event the API emits.
type EventRegistry struct {
	byType map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError marks a row that will fail the same way on every attempt.
type NonRetryableError struct {
	Err error
}

func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error { return e.Err }

func NewEventRegistry(ordersTopic string) (*EventRegistry, error) {
	if ordersTopic == "" {
		return nil, errors.New("orders topic is required")
	}
	return &EventRegistry{byType: map[enums.OutboxEventType]EventDescriptor{
		enums.EventOrderCreated: {
			EventType: enums.EventOrderCreated,
			Topic:     ordersTopic,
			decode:    decodeInto[payloads.OrderCreatedEvent],
		},
		enums.EventOrderStatusUpdated: {
			EventType: enums.EventOrderStatusUpdated,
			Topic:     ordersTopic,
			decode:    decodeInto[payloads.OrderStatusUpdatedEvent],
		},
	}}, nil
}

func decodeInto[T any, P interface {
	*T
	payloads.OrderEvent
}](data json.RawMessage) (payloads.OrderEvent, error) {
	p := P(new(T))
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Resolve checks the row shape and decodes its payload. Every error it
// returns is a NonRetryableError.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	resolved, err := r.resolve(event)
	if err != nil {
		return nil, NewNonRetryableError(err)
	}
	return resolved, nil
}

func (r *EventRegistry) resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.byType[event.EventType]
	switch {
	case !ok:
		return nil, fmt.Errorf("unsupported event type %q", event.EventType)
	case event.AggregateType != event.EventType.Aggregate():
		return nil, fmt.Errorf("event %s belongs to %q, row says %q", event.EventType, event.EventType.Aggregate(), event.AggregateType)
	case event.AggregateID == uuid.Nil:
		return nil, errors.New("aggregate_id is empty")
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if data := bytes.TrimSpace(envelope.Data); len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("%s has no payload", event.EventType)
	}

	payload, err := desc.decode(envelope.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", event.EventType, err)
	}
	return &ResolvedEvent{Descriptor: desc, Envelope: envelope, Payload: payload}, nil
}
