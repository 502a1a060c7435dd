package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/collabinvest/cil-storefront/pkg/enums"
)

// EmailRecord is written once per send attempt and never updated.
type EmailRecord struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	To          string            `gorm:"column:to_address;not null" json:"to"`
	Subject     string            `gorm:"column:subject;not null" json:"subject"`
	Message     string            `gorm:"column:message;not null" json:"message"`
	Type        enums.EmailType   `gorm:"column:type;not null" json:"type"`
	Status      enums.EmailStatus `gorm:"column:status;not null" json:"status"`
	MessageID   *string           `gorm:"column:message_id" json:"messageId,omitempty"`
	Error       *string           `gorm:"column:error" json:"error,omitempty"`
	OrderNumber *string           `gorm:"column:order_number" json:"orderNumber,omitempty"`
	SentAt      time.Time         `gorm:"column:sent_at;not null" json:"sentAt"`
}

func (EmailRecord) TableName() string { return "email_records" }
