package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "login:ip", 2, time.Second)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, int64(1), count)
	require.Len(t, mock.expireCalls, 1)

	allowed, count, err = client.FixedWindowAllow(ctx, "login:ip", 2, time.Second)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, int64(2), count)
	require.Len(t, mock.expireCalls, 1, "expire should only be set on the first hit")

	allowed, _, err = client.FixedWindowAllow(ctx, "login:ip", 2, time.Second)
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestSetNXAndGet(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.IdempotencyKey("orders", "abc")

	ok, err := client.SetNX(ctx, key, "pending", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = client.SetNX(ctx, key, "other", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	got, err := client.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "pending", got)

	require.NoError(t, client.Del(ctx, key))
	_, err = client.Get(ctx, key)
	require.True(t, IsNil(err))
}

func TestPushCappedTrimsList(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.ActivityLogKey()

	for i := 0; i < 5; i++ {
		require.NoError(t, client.PushCapped(ctx, key, fmt.Sprintf("entry-%d", i), 3))
	}

	entries, err := client.Range(ctx, key, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"entry-4", "entry-3", "entry-2"}, entries)
}

func TestSortedIndex(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.AdminSessionIndexKey()

	require.NoError(t, client.IndexAdd(ctx, key, "old", 100))
	require.NoError(t, client.IndexAdd(ctx, key, "fresh", 500))

	due, err := client.IndexUpTo(ctx, key, 200)
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, due)

	require.NoError(t, client.IndexRemove(ctx, key, "old"))
	due, err = client.IndexUpTo(ctx, key, 1000)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, due)
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "cil:idempotency:orders:id", client.IdempotencyKey("orders", "id"))
	assert.Equal(t, "cil:rate_limit:scope", client.RateLimitKey("scope"))
	assert.Equal(t, "cil:session:admin:abc", client.AdminSessionKey("abc"))
	assert.Equal(t, "cil:session:admin:index", client.AdminSessionIndexKey())
	assert.Equal(t, "cil:activity:admin", client.ActivityLogKey())
	assert.Equal(t, "cil:lock:cron:session_sweep", client.CronLockKey("session_sweep"))
	assert.Equal(t, "cil:idempotency:orders", client.IdempotencyKey("orders", ""), "empty parts are skipped")
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	require.Error(t, client.Ping(context.Background()))
	_, err := client.Get(context.Background(), "k")
	require.Error(t, err)
	require.NoError(t, client.Close())
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	lists       map[string][]string
	zsets       map[string]map[string]float64
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data:  make(map[string]string),
		incr:  make(map[string]int64),
		lists: make(map[string][]string),
		zsets: make(map[string]map[string]float64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) LPush(_ context.Context, key string, values ...any) *redis.IntCmd {
	for _, v := range values {
		m.lists[key] = append([]string{fmt.Sprint(v)}, m.lists[key]...)
	}
	return redis.NewIntResult(int64(len(m.lists[key])), nil)
}

func (m *mockCmdable) LTrim(_ context.Context, key string, start, stop int64) *redis.StatusCmd {
	m.lists[key] = sliceRange(m.lists[key], start, stop)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) LRange(_ context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	return redis.NewStringSliceResult(sliceRange(m.lists[key], start, stop), nil)
}

func (m *mockCmdable) ZAdd(_ context.Context, key string, members ...redis.Z) *redis.IntCmd {
	set, ok := m.zsets[key]
	if !ok {
		set = map[string]float64{}
		m.zsets[key] = set
	}
	for _, z := range members {
		set[fmt.Sprint(z.Member)] = z.Score
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (m *mockCmdable) ZRangeByScore(_ context.Context, key string, opt *redis.ZRangeBy) *redis.StringSliceCmd {
	max, _ := strconv.ParseFloat(opt.Max, 64)
	var out []string
	for member, score := range m.zsets[key] {
		if score <= max {
			out = append(out, member)
		}
	}
	sort.Strings(out)
	return redis.NewStringSliceResult(out, nil)
}

func (m *mockCmdable) ZRem(_ context.Context, key string, members ...any) *redis.IntCmd {
	for _, member := range members {
		delete(m.zsets[key], fmt.Sprint(member))
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func sliceRange(list []string, start, stop int64) []string {
	n := int64(len(list))
	if stop < 0 || stop >= n {
		stop = n - 1
	}
	if start >= n || start > stop {
		return []string{}
	}
	return append([]string(nil), list[start:stop+1]...)
}
