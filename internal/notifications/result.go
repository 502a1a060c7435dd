package notifications

// Status is the outcome of one notification attempt.
type Status string

const (
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the typed outcome of a single send. A failed send is a value,
// not an error, so callers can report it without aborting.
type Result struct {
	Status    Status `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Err       error  `json:"-"`
}

func (r Result) OK() bool { return r.Status == StatusSent }

// Outcome covers the pair of order confirmation emails. Customer is nil
// when the order carries no email address.
type Outcome struct {
	Customer *Result
	Admin    Result
}

func (o Outcome) CustomerStatus() Status {
	if o.Customer == nil {
		return StatusSkipped
	}
	return o.Customer.Status
}
