package enums

import "slices"

// OutboxAggregateType names the entity an outbox row belongs to. Orders are
// the only aggregate the storefront publishes.
type OutboxAggregateType string

const AggregateOrder OutboxAggregateType = "order"

func (a OutboxAggregateType) IsValid() bool {
	return a == AggregateOrder
}

// OutboxEventType is the event_type column and the event_type message
// attribute consumers route on.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderStatusUpdated OutboxEventType = "order_status_updated"
)

var orderEvents = []OutboxEventType{EventOrderCreated, EventOrderStatusUpdated}

func (e OutboxEventType) IsValid() bool {
	return slices.Contains(orderEvents, e)
}

// Aggregate reports which aggregate emits e.
func (e OutboxEventType) Aggregate() OutboxAggregateType {
	if slices.Contains(orderEvents, e) {
		return AggregateOrder
	}
	return ""
}

// OutboxDLQErrorReason says why a row was parked in outbox_dlq.
type OutboxDLQErrorReason string

const (
	// OutboxDLQReasonMaxAttempts: the broker kept failing.
	OutboxDLQReasonMaxAttempts OutboxDLQErrorReason = "max_attempts"
	// OutboxDLQReasonNonRetryable: the row itself is bad (unknown type,
	// broken envelope, no topic).
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)
