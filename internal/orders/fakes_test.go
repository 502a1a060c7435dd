package orders

import (
	"context"
	"sort"
	"sync"

	"github.com/collabinvest/cil-storefront/internal/notifications"
	"github.com/collabinvest/cil-storefront/pkg/db/models"
	"github.com/collabinvest/cil-storefront/pkg/enums"
	pkgerrors "github.com/collabinvest/cil-storefront/pkg/errors"
	"github.com/collabinvest/cil-storefront/pkg/money"
	"github.com/collabinvest/cil-storefront/pkg/outbox"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memoryRepo enforces order number uniqueness the way the unique index does.
type memoryRepo struct {
	mu        sync.Mutex
	byNumber  map[string]*models.Order
	createErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byNumber: map[string]*models.Order{}}
}

func (r *memoryRepo) Create(_ context.Context, _ *gorm.DB, draft *models.Order) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, taken := r.byNumber[draft.OrderNumber]; taken {
		return nil, ErrDuplicateOrderNumber
	}
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	if len(draft.StatusUpdates) == 0 {
		draft.StatusUpdates = []models.StatusUpdate{placedUpdate(draft.CreatedAt)}
	}
	stored := *draft
	r.byNumber[draft.OrderNumber] = &stored
	return draft, nil
}

func (r *memoryRepo) FindByOrderNumber(_ context.Context, orderNumber string, filters LookupFilters) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byNumber[orderNumber]
	if !ok {
		return nil, nil
	}
	if filters.Email != "" && filters.Email != o.CustomerEmail {
		return nil, nil
	}
	if filters.Phone != "" && filters.Phone != o.CustomerPhone {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *memoryRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.byNumber {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) AppendStatusUpdate(_ context.Context, _ *gorm.DB, orderNumber string, in StatusAppend) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byNumber[orderNumber]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !o.Status.CanTransitionTo(in.Update.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "illegal transition")
	}
	update := in.Update
	if update.Title == "" {
		update.Title = update.Status.DefaultTitle()
	}
	o.StatusUpdates = append(append([]models.StatusUpdate{}, o.StatusUpdates...), update)
	o.Status = update.Status
	if in.TrackingNumber != nil {
		o.TrackingNumber = in.TrackingNumber
	}
	cp := *o
	return &cp, nil
}

func (r *memoryRepo) List(context.Context, ListParams) (ListResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Order, 0, len(r.byNumber))
	for _, o := range r.byNumber {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return ListResult{Items: out}, nil
}

func (r *memoryRepo) Stats(context.Context) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := Stats{Revenue: money.Zero()}
	for _, o := range r.byNumber {
		stats.TotalOrders++
		if o.Status == enums.OrderStatusPending {
			stats.PendingOrders++
		}
		if o.Status != enums.OrderStatusCancelled {
			stats.Revenue = stats.Revenue.Add(o.Total)
		}
	}
	return stats, nil
}

func (r *memoryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byNumber)
}

type inlineTx struct{}

func (inlineTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []outbox.DomainEvent
	err    error
}

func (e *recordingEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, event)
	return nil
}

func (e *recordingEmitter) len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events)
}

type stubNotifier struct {
	mu            sync.Mutex
	confirmations []string
	statusUpdates []enums.OrderStatus
	outcome       func(order *models.Order) notifications.Outcome
	panicWith     any
}

func (n *stubNotifier) SendOrderConfirmation(_ context.Context, order *models.Order) notifications.Outcome {
	n.mu.Lock()
	n.confirmations = append(n.confirmations, order.OrderNumber)
	n.mu.Unlock()
	if n.panicWith != nil {
		panic(n.panicWith)
	}
	if n.outcome != nil {
		return n.outcome(order)
	}
	out := notifications.Outcome{Admin: notifications.Result{Status: notifications.StatusSent}}
	if order.CustomerEmail != "" {
		out.Customer = &notifications.Result{Status: notifications.StatusSent}
	}
	return out
}

func (n *stubNotifier) SendStatusUpdate(_ context.Context, _ *models.Order, update models.StatusUpdate) *notifications.Result {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statusUpdates = append(n.statusUpdates, update.Status)
	if n.panicWith != nil {
		panic(n.panicWith)
	}
	return &notifications.Result{Status: notifications.StatusSent}
}

// sequenceGenerator replays a fixed list of numbers, then repeats the last.
type sequenceGenerator struct {
	mu      sync.Mutex
	numbers []string
	calls   int
}

func (g *sequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	g.calls++
	if i >= len(g.numbers) {
		i = len(g.numbers) - 1
	}
	return g.numbers[i]
}
