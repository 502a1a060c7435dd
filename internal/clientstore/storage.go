package clientstore

import "errors"

// Storage is a small string key/value store scoped either to the device
// (persistent) or to the current browsing session.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

var ErrEmptyKey = errors.New("clientstore: key is required")

const (
	KeyCart            = "cart"
	KeyTrackedOrder    = "trackedOrder"
	KeyLastOrderNumber = "lastOrderNumber"
)
