package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	ActionLogin        = "login"
	ActionLogout       = "logout"
	ActionStatusUpdate = "order_status_update"
	ActionLoginFailed  = "login_failed"

	DefaultActivityLimit = 1000
)

// ActivityEntry is one line in the back-office audit trail.
type ActivityEntry struct {
	ID     string    `json:"id"`
	Action string    `json:"action"`
	Actor  string    `json:"actor"`
	Target string    `json:"target,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

type activityStore interface {
	PushCapped(ctx context.Context, key string, value any, limit int64) error
	Range(ctx context.Context, key string, start, stop int64) ([]string, error)
	ActivityLogKey() string
}

// ActivityLog keeps the newest entries first in a capped redis list.
type ActivityLog struct {
	store activityStore
	limit int64
	now   func() time.Time
}

func NewActivityLog(store activityStore, limit int) (*ActivityLog, error) {
	if store == nil {
		return nil, fmt.Errorf("activity store required")
	}
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	return &ActivityLog{store: store, limit: int64(limit), now: time.Now}, nil
}

func (l *ActivityLog) Record(ctx context.Context, entry ActivityEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.At.IsZero() {
		entry.At = l.now().UTC()
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}
	if err := l.store.PushCapped(ctx, l.store.ActivityLogKey(), string(raw), l.limit); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first. Undecodable entries are skipped.
func (l *ActivityLog) Recent(ctx context.Context, n int) ([]ActivityEntry, error) {
	if n <= 0 || int64(n) > l.limit {
		n = int(l.limit)
	}
	rows, err := l.store.Range(ctx, l.store.ActivityLogKey(), 0, int64(n-1))
	if err != nil {
		return nil, fmt.Errorf("read activity: %w", err)
	}
	out := make([]ActivityEntry, 0, len(rows))
	for _, row := range rows {
		var e ActivityEntry
		if err := json.Unmarshal([]byte(row), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
