package enums

import (
	"fmt"
	"strings"
)

// OrderStatus tracks where a storefront order is in fulfilment.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var nextOrderStatuses = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo allows re-posting the current status so admins can add
// extra timeline notes without moving the order.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.IsValid() {
		return false
	}
	if s == next {
		return true
	}
	for _, candidate := range nextOrderStatuses[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// DefaultTitle is the timeline headline used when an update carries none.
func (s OrderStatus) DefaultTitle() string {
	switch s {
	case OrderStatusPending:
		return "Order Placed"
	case OrderStatusProcessing:
		return "Order Processing"
	case OrderStatusShipped:
		return "Order Shipped"
	case OrderStatusDelivered:
		return "Order Delivered"
	case OrderStatusCancelled:
		return "Order Cancelled"
	default:
		return "Order Updated"
	}
}

// ParseOrderStatus accepts any casing.
func ParseOrderStatus(value string) (OrderStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validOrderStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// OrderStatusStrings lists every status in fulfilment order.
func OrderStatusStrings() []string {
	out := make([]string, len(validOrderStatuses))
	for i, s := range validOrderStatuses {
		out[i] = string(s)
	}
	return out
}
