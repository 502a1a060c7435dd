package session

import (
	"context"
	"time"
)

// Sweep calls SweepExpired every interval until ctx is done. report sees
// each outcome and may be nil. The caller owns the goroutine.
func Sweep(ctx context.Context, store Store, every time.Duration, report func(removed int, err error)) {
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.SweepExpired(ctx)
			if report != nil {
				report(removed, err)
			}
		}
	}
}
