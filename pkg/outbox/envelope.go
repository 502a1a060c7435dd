package outbox

import (
	"encoding/json"
	"time"
)

// ActorRef identifies who caused the event: a storefront customer or a
// named admin.
type ActorRef struct {
	Kind     string `json:"kind"`
	Username string `json:"username,omitempty"`
}

const (
	ActorCustomer = "customer"
	ActorAdmin    = "admin"
)

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// Message is what the publisher hands to a transport. Key is the ordering
// key (the order number) for backends that support one.
type Message struct {
	Key        string
	Data       []byte
	Attributes map[string]string
}
