package orders

import (
	"time"

	"github.com/collabinvest/cil-storefront/pkg/db/models"
	"github.com/collabinvest/cil-storefront/pkg/enums"
	"github.com/collabinvest/cil-storefront/pkg/money"
	"github.com/collabinvest/cil-storefront/pkg/pagination"
)

// ItemInput is one cart line as submitted by the storefront.
type ItemInput struct {
	Name     string
	Quantity int
	Price    money.Amount
}

// CreateInput is the storefront order submission.
type CreateInput struct {
	Items           []ItemInput
	Total           money.Amount
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerAddress string
	CustomerNotes   string
}

// EmailSummary reports the notification outcome per recipient:
// sent, failed or skipped.
type EmailSummary struct {
	Customer string `json:"customer"`
	Admin    string `json:"admin"`
}

type CreateResult struct {
	Order       *models.Order `json:"order"`
	Emails      EmailSummary  `json:"emails"`
	WhatsAppURL string        `json:"whatsappUrl"`
}

// LookupFilters narrow a lookup by contact details. Empty fields are ignored.
type LookupFilters struct {
	Email string
	Phone string
}

// StatusAppend is one admin-triggered timeline entry plus optional shipping
// details that travel with it.
type StatusAppend struct {
	Update            models.StatusUpdate
	EstimatedDelivery *time.Time
	TrackingNumber    *string
}

// StatusUpdateInput is what an admin submits to move an order along.
type StatusUpdateInput struct {
	Status            enums.OrderStatus
	Title             string
	Description       string
	Completed         *bool
	EstimatedDelivery *time.Time
	TrackingNumber    *string
	Actor             string
}

type ListParams struct {
	pagination.Params
	Status *enums.OrderStatus
}

type ListResult = pagination.Page[models.Order]

// Stats feeds the admin dashboard. Revenue excludes cancelled orders.
type Stats struct {
	TotalOrders     int64        `json:"totalOrders"`
	PendingOrders   int64        `json:"pendingOrders"`
	DeliveredOrders int64        `json:"deliveredOrders"`
	Revenue         money.Amount `json:"revenue"`
}

// RedactedOrder is the customer-facing tracking view. It never carries
// the phone, email or delivery address.
type RedactedOrder struct {
	OrderNumber       string                `json:"orderNumber"`
	Status            enums.OrderStatus     `json:"status"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
	Total             money.Amount          `json:"total"`
	Items             []models.OrderItem    `json:"items"`
	CustomerName      string                `json:"customerName"`
	EstimatedDelivery *time.Time            `json:"estimatedDelivery"`
	TrackingNumber    *string               `json:"trackingNumber"`
	StatusUpdates     []models.StatusUpdate `json:"statusUpdates"`
	Notes             string                `json:"notes"`
}

// Redact projects an order onto the tracking view.
func Redact(o *models.Order) *RedactedOrder {
	if o == nil {
		return nil
	}
	items := append([]models.OrderItem{}, o.Items...)
	updates := append([]models.StatusUpdate{}, o.StatusUpdates...)
	return &RedactedOrder{
		OrderNumber:       o.OrderNumber,
		Status:            o.Status,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Total:             o.Total,
		Items:             items,
		CustomerName:      o.CustomerName,
		EstimatedDelivery: o.EstimatedDelivery,
		TrackingNumber:    o.TrackingNumber,
		StatusUpdates:     updates,
		Notes:             o.CustomerNotes,
	}
}
