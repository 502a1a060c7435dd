package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/collabinvest/cil-storefront/pkg/db/types"
	"github.com/collabinvest/cil-storefront/pkg/enums"
	"github.com/collabinvest/cil-storefront/pkg/money"
)

// OrderItem is one line of a storefront order, stored inside the items column.
type OrderItem struct {
	Name     string       `json:"name"`
	Quantity int          `json:"quantity"`
	Price    money.Amount `json:"price"`
}

// StatusUpdate is one timeline entry. Entries are only ever appended.
type StatusUpdate struct {
	Status      enums.OrderStatus `json:"status"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Date        time.Time         `json:"date"`
	Completed   bool              `json:"completed"`
}

// Order maps the orders table.
type Order struct {
	ID                uuid.UUID                      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderNumber       string                         `gorm:"column:order_number;not null;uniqueIndex:ux_orders_order_number" json:"orderNumber"`
	CustomerName      string                         `gorm:"column:customer_name;not null" json:"customerName"`
	CustomerPhone     string                         `gorm:"column:customer_phone;not null" json:"customerPhone"`
	CustomerEmail     string                         `gorm:"column:customer_email;not null;default:''" json:"customerEmail"`
	CustomerAddress   string                         `gorm:"column:customer_address;not null;default:''" json:"customerAddress"`
	CustomerNotes     string                         `gorm:"column:customer_notes;not null;default:''" json:"customerNotes"`
	Items             dbtypes.JSONList[OrderItem]    `gorm:"column:items;type:jsonb;not null" json:"items"`
	Total             money.Amount                   `gorm:"column:total;type:numeric(14,2);not null" json:"total"`
	Status            enums.OrderStatus              `gorm:"column:status;not null;default:pending" json:"status"`
	StatusUpdates     dbtypes.JSONList[StatusUpdate] `gorm:"column:status_updates;type:jsonb;not null" json:"statusUpdates"`
	Source            string                         `gorm:"column:source;not null;default:website_cart" json:"source"`
	EstimatedDelivery *time.Time                     `gorm:"column:estimated_delivery" json:"estimatedDelivery"`
	TrackingNumber    *string                        `gorm:"column:tracking_number" json:"trackingNumber"`
	CreatedAt         time.Time                      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt         time.Time                      `gorm:"column:updated_at" json:"updatedAt"`
}

func (Order) TableName() string { return "orders" }
