package session

import (
	"fmt"
	"strings"
	"time"

	redisclient "github.com/collabinvest/cil-storefront/pkg/redis"
)

const (
	KindRedis  = "redis"
	KindMemory = "memory"
)

// Open builds the store named by kind. The memory store only suits a
// single API process since sessions are not shared.
func Open(kind string, client *redisclient.Client, idle time.Duration) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindRedis:
		return NewRedisStore(client, idle)
	case KindMemory:
		return NewMemoryStore(idle), nil
	default:
		return nil, fmt.Errorf("unsupported session store %q", kind)
	}
}
