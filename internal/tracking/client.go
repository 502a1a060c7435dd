package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/collabinvest/cil-storefront/internal/clientstore"
	"github.com/collabinvest/cil-storefront/internal/control"
	"github.com/collabinvest/cil-storefront/internal/orders"
	"github.com/collabinvest/cil-storefront/pkg/logger"
	"github.com/collabinvest/cil-storefront/pkg/metrics"
)

const (
	DefaultMaxAttempts     = 3
	DefaultBaseBackoff     = 500 * time.Millisecond
	DefaultRefreshInterval = 30 * time.Second
)

const (
	MessageNotFound    = "Order not found. Please verify your order number and contact details."
	MessageUnavailable = "Unable to retrieve order at this time. Try again later."
	MessageRequired    = "Please enter your order number"
	MessageBadFormat   = "Invalid order number format. Expected: CIL-XXXXXX-XXX"
)

var (
	ErrOrderNumberRequired = errors.New("tracking: order number is required")
	ErrInvalidOrderNumber  = errors.New("tracking: invalid order number format")
	ErrUnavailable         = errors.New("tracking: order unavailable")
	ErrBusy                = errors.New("tracking: fetch already in flight")
)

// Renderer is the presentation side of the tracking page.
type Renderer interface {
	Loading(on bool)
	Render(v View)
	ShowError(message string)
	FormMessage(message string)
}

// URLState mirrors the loaded order into the page address.
type URLState interface {
	SetOrderParam(orderNumber string)
}

type Options struct {
	Fetcher  Fetcher
	Renderer Renderer
	URL      URLState
	// Session holds the trackedOrder and lastOrderNumber hand-off keys.
	Session clientstore.Storage
	Clock   Clock
	// AutoRefresh turns on polling once an order is shown. The one-shot
	// track form leaves it off and hands the order to the session instead.
	AutoRefresh     bool
	RefreshInterval time.Duration
	MaxAttempts     int
	BaseBackoff     time.Duration
	Logger          *logger.Logger
	Metrics         *metrics.TrackingMetrics
}

// Client drives the tracking page: validate, fetch with backoff, render and
// keep the view fresh while the page is visible.
type Client struct {
	fetcher  Fetcher
	renderer Renderer
	url      URLState
	session  clientstore.Storage
	clock    Clock
	logg     *logger.Logger
	metrics  *metrics.TrackingMetrics

	autoRefresh bool
	interval    time.Duration
	maxAttempts int
	backoff     time.Duration

	submit   control.Control
	fetching atomic.Bool

	root   context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	current     *orders.RedactedOrder
	query       Query
	stopRefresh context.CancelFunc
	refreshDone chan struct{}
	hidden      bool
	closed      bool
}

func New(opts Options) (*Client, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("tracking fetcher required")
	}
	if opts.Renderer == nil {
		return nil, fmt.Errorf("tracking renderer required")
	}
	if opts.URL == nil {
		return nil, fmt.Errorf("tracking url state required")
	}
	if opts.Session == nil {
		opts.Session = clientstore.NewMemory()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = DefaultBaseBackoff
	}

	root, cancel := context.WithCancel(context.Background())
	return &Client{
		fetcher:     opts.Fetcher,
		renderer:    opts.Renderer,
		url:         opts.URL,
		session:     opts.Session,
		clock:       opts.Clock,
		logg:        opts.Logger,
		metrics:     opts.Metrics,
		autoRefresh: opts.AutoRefresh,
		interval:    opts.RefreshInterval,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.BaseBackoff,
		root:        root,
		cancel:      cancel,
	}, nil
}

// Submit handles the track form. Input problems are reported through the
// renderer and returned without touching the network. A submit while another
// is running is dropped.
func (c *Client) Submit(ctx context.Context, orderNumber, email, phone string) error {
	q := Query{
		OrderNumber: strings.TrimSpace(orderNumber),
		Email:       strings.TrimSpace(email),
		Phone:       strings.TrimSpace(phone),
	}
	if q.OrderNumber == "" {
		c.renderer.FormMessage(MessageRequired)
		return ErrOrderNumberRequired
	}
	if !orders.ValidOrderNumber(q.OrderNumber) {
		c.renderer.FormMessage(MessageBadFormat)
		return ErrInvalidOrderNumber
	}

	_, err := c.submit.Do(func() error {
		return c.Load(ctx, q)
	})
	if errors.Is(err, ErrBusy) {
		return nil
	}
	return err
}

// Load fetches and shows one order. Concurrent loads are dropped with ErrBusy.
func (c *Client) Load(ctx context.Context, q Query) error {
	if !c.fetching.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.fetching.Store(false)

	c.renderer.Loading(true)
	defer c.renderer.Loading(false)

	ctx = c.logg.WithOrderNumber(ctx, q.OrderNumber)
	order, err := c.fetchWithRetry(ctx, q)
	switch {
	case errors.Is(err, ErrNotFound):
		c.renderer.ShowError(MessageNotFound)
		return ErrNotFound
	case err != nil:
		c.logg.Error(ctx, "tracking.fetch.failed", err)
		c.renderer.ShowError(MessageUnavailable)
		return err
	}

	c.show(order, q)
	c.url.SetOrderParam(q.OrderNumber)
	switch {
	case !c.autoRefresh:
		c.handOff(ctx, order)
	case ctx.Err() == nil:
		c.ensureRefresh()
	}
	return nil
}

// Refresh reloads the current order, if any.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	current, q := c.current, c.query
	c.mu.Unlock()
	if current == nil {
		return nil
	}
	return c.Load(ctx, q)
}

// Hydrate restores a page: a session hand-off wins over the order param.
func (c *Client) Hydrate(ctx context.Context, orderParam string) error {
	if raw, ok := c.session.Get(clientstore.KeyTrackedOrder); ok && raw != "" {
		var order orders.RedactedOrder
		if err := json.Unmarshal([]byte(raw), &order); err == nil && order.OrderNumber != "" {
			_ = c.session.Remove(clientstore.KeyTrackedOrder)
			c.show(&order, Query{OrderNumber: order.OrderNumber})
			if c.autoRefresh {
				c.ensureRefresh()
			}
			return nil
		}
	}

	orderParam = strings.TrimSpace(orderParam)
	if orderParam == "" {
		return nil
	}
	return c.Load(ctx, Query{OrderNumber: orderParam})
}

// Prefill returns the last order number placed in this session.
func (c *Client) Prefill() string {
	v, _ := c.session.Get(clientstore.KeyLastOrderNumber)
	return v
}

// Current returns the order on screen.
func (c *Client) Current() *orders.RedactedOrder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Hidden pauses polling. A fetch already in flight still renders, but does
// not restart the timer until Visible.
func (c *Client) Hidden() {
	c.mu.Lock()
	c.hidden = true
	c.mu.Unlock()
	c.haltRefresh()
}

// Visible resumes polling when an order is on screen.
func (c *Client) Visible() {
	c.mu.Lock()
	c.hidden = false
	loaded := c.current != nil
	c.mu.Unlock()
	if loaded && c.autoRefresh {
		c.ensureRefresh()
	}
}

// Close stops polling for good. An in-flight fetch is left to finish.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	c.haltRefresh()
}

func (c *Client) fetchWithRetry(ctx context.Context, q Query) (*orders.RedactedOrder, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		// Cancellation only cuts the waits between attempts.
		order, err := c.fetcher.Fetch(context.WithoutCancel(ctx), q)
		if err == nil {
			c.metrics.IncAttempt("success")
			return order, nil
		}
		if errors.Is(err, ErrNotFound) {
			c.metrics.IncAttempt("not_found")
			return nil, ErrNotFound
		}
		c.metrics.IncAttempt("error")
		lastErr = err
		if attempt == c.maxAttempts {
			break
		}

		wait := c.backoff * time.Duration(1<<attempt)
		c.logg.Warn(c.logg.WithFields(ctx, map[string]any{
			"attempt": attempt,
			"wait_ms": wait.Milliseconds(),
			"error":   err.Error(),
		}), "tracking.fetch.retry")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		case <-c.clock.After(wait):
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrUnavailable, c.maxAttempts, lastErr)
}

func (c *Client) show(order *orders.RedactedOrder, q Query) {
	c.mu.Lock()
	c.current = order
	c.query = q
	c.mu.Unlock()
	c.renderer.Render(BuildView(order))
}

func (c *Client) handOff(ctx context.Context, order *orders.RedactedOrder) {
	raw, err := json.Marshal(order)
	if err != nil {
		c.logg.Error(ctx, "tracking.handoff.encode", err)
		return
	}
	if err := c.session.Set(clientstore.KeyTrackedOrder, string(raw)); err != nil {
		c.logg.Error(ctx, "tracking.handoff.store", err)
	}
}

// ensureRefresh starts the polling loop unless one is already running or
// the page is hidden.
func (c *Client) ensureRefresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.hidden || c.stopRefresh != nil {
		return
	}
	ctx, stop := context.WithCancel(c.root)
	done := make(chan struct{})
	c.stopRefresh = stop
	c.refreshDone = done

	ticker := c.clock.NewTicker(c.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				if err := c.Refresh(ctx); err != nil && !errors.Is(err, ErrBusy) {
					c.logg.Debug(ctx, "tracking.refresh.failed")
				}
			}
		}
	}()
}

func (c *Client) haltRefresh() {
	c.mu.Lock()
	stop, done := c.stopRefresh, c.refreshDone
	c.stopRefresh, c.refreshDone = nil, nil
	c.mu.Unlock()
	if stop == nil {
		return
	}
	stop()
	<-done
}
