package payloads

import (
	"github.com/collabinvest/cil-storefront/pkg/enums"
	"github.com/collabinvest/cil-storefront/pkg/money"
)

// OrderCreatedEvent is emitted in the same transaction as the order insert.
type OrderCreatedEvent struct {
	OrderNumber string       `json:"orderNumber"`
	Total       money.Amount `json:"total"`
	ItemCount   int          `json:"itemCount"`
	Source      string       `json:"source"`
}

// OrderStatusUpdatedEvent is emitted when an admin appends a status update.
type OrderStatusUpdatedEvent struct {
	OrderNumber    string            `json:"orderNumber"`
	PreviousStatus enums.OrderStatus `json:"previousStatus"`
	Status         enums.OrderStatus `json:"status"`
	Title          string            `json:"title"`
}

// OrderEvent is any payload that belongs to a single order.
type OrderEvent interface {
	OrderKey() string
}

func (e OrderCreatedEvent) OrderKey() string       { return e.OrderNumber }
func (e OrderStatusUpdatedEvent) OrderKey() string { return e.OrderNumber }
