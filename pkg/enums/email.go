package enums

import "fmt"

// EmailStatus is the outcome recorded for a single send attempt.
type EmailStatus string

const (
	EmailStatusSent   EmailStatus = "sent"
	EmailStatusFailed EmailStatus = "failed"
)

func (s EmailStatus) IsValid() bool {
	return s == EmailStatusSent || s == EmailStatusFailed
}

type EmailType string

const (
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypeOrderAdminAlert   EmailType = "order_admin_alert"
	EmailTypeStatusUpdate      EmailType = "status_update"
)

var validEmailTypes = []EmailType{
	EmailTypeOrderConfirmation,
	EmailTypeOrderAdminAlert,
	EmailTypeStatusUpdate,
}

func (t EmailType) IsValid() bool {
	for _, candidate := range validEmailTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

func ParseEmailType(value string) (EmailType, error) {
	for _, candidate := range validEmailTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid email type %q", value)
}
