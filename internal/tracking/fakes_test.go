package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/collabinvest/cil-storefront/internal/orders"
)

type recordingRenderer struct {
	mu       sync.Mutex
	loading  []bool
	views    []View
	errors   []string
	messages []string
}

func (r *recordingRenderer) Loading(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = append(r.loading, on)
}

func (r *recordingRenderer) Render(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *recordingRenderer) ShowError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, message)
}

func (r *recordingRenderer) FormMessage(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recordingRenderer) viewCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

type recordingURL struct {
	mu     sync.Mutex
	params []string
}

func (u *recordingURL) SetOrderParam(orderNumber string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.params = append(u.params, orderNumber)
}

type fetchFunc func(ctx context.Context, q Query) (*orders.RedactedOrder, error)

type scriptedFetcher struct {
	mu      sync.Mutex
	calls   []Query
	fn      fetchFunc
	calledC chan Query
}

func (f *scriptedFetcher) Fetch(ctx context.Context, q Query) (*orders.RedactedOrder, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	fn := f.fn
	ch := f.calledC
	f.mu.Unlock()
	if ch != nil {
		ch <- q
	}
	return fn(ctx, q)
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeClock fires every wait immediately and records it. Tickers are driven
// by the test.
type fakeClock struct {
	mu      sync.Mutex
	waits   []time.Duration
	tickers []*fakeTicker
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits = append(c.waits, d)
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	t := &fakeTicker{c: make(chan time.Time), interval: d}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

func (c *fakeClock) recordedWaits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration{}, c.waits...)
}

func (c *fakeClock) tickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

func (c *fakeClock) lastTicker() *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

type fakeTicker struct {
	c        chan time.Time
	interval time.Duration
	mu       sync.Mutex
	stopped  bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
