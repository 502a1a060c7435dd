// Package session stores admin sessions behind a small injected interface so
// the API can run against Redis in production and memory in tests or
// single-node installs.
package session

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidSession = errors.New("invalid session")

// Session is one logged-in admin. ExpiresAt slides forward on every Get.
type Session struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"createdAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Store keeps sessions with an idle expiry.
type Store interface {
	// Get returns nil, nil for unknown or expired ids and refreshes the idle
	// deadline of live ones.
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, s Session) error
	Delete(ctx context.Context, id string) error
	// SweepExpired removes sessions past their deadline and reports how many.
	SweepExpired(ctx context.Context) (int, error)
}

// Checker is the read-only surface the auth middleware needs.
type Checker interface {
	HasSession(ctx context.Context, id string) (bool, error)
}

// StoreChecker adapts any Store into a Checker.
type StoreChecker struct {
	Store Store
}

func (c StoreChecker) HasSession(ctx context.Context, id string) (bool, error) {
	s, err := c.Store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return s != nil, nil
}

func validate(s Session) error {
	if s.ID == "" || s.Username == "" {
		return ErrInvalidSession
	}
	return nil
}
