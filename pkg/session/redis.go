package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisclient "github.com/collabinvest/cil-storefront/pkg/redis"
)

type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IndexAdd(ctx context.Context, key, member string, score float64) error
	IndexUpTo(ctx context.Context, key string, max float64) ([]string, error)
	IndexRemove(ctx context.Context, key string, members ...string) error
	AdminSessionKey(sessionID string) string
	AdminSessionIndexKey() string
}

// RedisStore keeps each session under its own key with a TTL equal to the
// idle timeout. A sorted set scored by expiry lets SweepExpired find ids
// whose keys already lapsed.
type RedisStore struct {
	client redisStore
	idle   time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redisclient.Client, idle time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if idle <= 0 {
		return nil, fmt.Errorf("session idle timeout must be positive")
	}
	return &RedisStore{client: client, idle: idle, now: time.Now}, nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, nil
	}
	raw, err := r.client.Get(ctx, r.client.AdminSessionKey(id))
	if redisclient.IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	now := r.now()
	s.LastSeenAt = now
	s.ExpiresAt = now.Add(r.idle)
	if err := r.write(ctx, s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Set(ctx context.Context, s Session) error {
	if err := validate(s); err != nil {
		return err
	}
	now := r.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.LastSeenAt = now
	s.ExpiresAt = now.Add(r.idle)
	return r.write(ctx, s)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.client.AdminSessionKey(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return r.client.IndexRemove(ctx, r.client.AdminSessionIndexKey(), id)
}

func (r *RedisStore) SweepExpired(ctx context.Context) (int, error) {
	index := r.client.AdminSessionIndexKey()
	due, err := r.client.IndexUpTo(ctx, index, float64(r.now().Unix()))
	if err != nil {
		return 0, fmt.Errorf("list expired sessions: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(due))
	for _, id := range due {
		keys = append(keys, r.client.AdminSessionKey(id))
	}
	if err := r.client.Del(ctx, keys...); err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	if err := r.client.IndexRemove(ctx, index, due...); err != nil {
		return 0, fmt.Errorf("prune session index: %w", err)
	}
	return len(due), nil
}

func (r *RedisStore) write(ctx context.Context, s Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.client.AdminSessionKey(s.ID), payload, r.idle); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return r.client.IndexAdd(ctx, r.client.AdminSessionIndexKey(), s.ID, float64(s.ExpiresAt.Unix()))
}
