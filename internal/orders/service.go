package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/collabinvest/cil-storefront/internal/notifications"
	"github.com/collabinvest/cil-storefront/pkg/db/models"
	"github.com/collabinvest/cil-storefront/pkg/enums"
	pkgerrors "github.com/collabinvest/cil-storefront/pkg/errors"
	"github.com/collabinvest/cil-storefront/pkg/logger"
	"github.com/collabinvest/cil-storefront/pkg/metrics"
	"github.com/collabinvest/cil-storefront/pkg/money"
	"github.com/collabinvest/cil-storefront/pkg/outbox"
	"github.com/collabinvest/cil-storefront/pkg/outbox/payloads"
	"gorm.io/gorm"
)

const (
	DefaultSource            = "website_cart"
	DefaultNumberMaxAttempts = 5
)

// ServiceParams wires the order service. Repo, Tx, Outbox and Notifier are
// required.
type ServiceParams struct {
	Repo              Repository
	Tx                txRunner
	Outbox            outboxEmitter
	Notifier          Notifier
	Numbers           NumberGenerator
	Logger            *logger.Logger
	Metrics           *metrics.OrderMetrics
	ShopPhone         string
	Source            string
	NumberMaxAttempts int
}

type Service struct {
	repo        Repository
	tx          txRunner
	outbox      outboxEmitter
	notifier    Notifier
	numbers     NumberGenerator
	logg        *logger.Logger
	metrics     *metrics.OrderMetrics
	shopPhone   string
	source      string
	maxAttempts int
	now         func() time.Time
}

func NewService(p ServiceParams) (*Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if p.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if p.Numbers == nil {
		p.Numbers = NewGenerator()
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if strings.TrimSpace(p.Source) == "" {
		p.Source = DefaultSource
	}
	if p.NumberMaxAttempts <= 0 {
		p.NumberMaxAttempts = DefaultNumberMaxAttempts
	}
	return &Service{
		repo:        p.Repo,
		tx:          p.Tx,
		outbox:      p.Outbox,
		notifier:    p.Notifier,
		numbers:     p.Numbers,
		logg:        p.Logger,
		metrics:     p.Metrics,
		shopPhone:   p.ShopPhone,
		source:      p.Source,
		maxAttempts: p.NumberMaxAttempts,
		now:         time.Now,
	}, nil
}

// Create validates the submission, persists it under a fresh order number
// together with its outbox event, then sends the notifications. Email
// outcomes are reported, never returned as errors.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	start := s.now()
	defer func() { s.metrics.ObserveCreate(s.now().Sub(start)) }()

	if err := validateCreate(in); err != nil {
		s.metrics.IncCreateFailure("validation")
		return nil, err
	}

	draft := s.buildDraft(in)
	if sum := itemsTotal(draft.Items); !sum.Equal(draft.Total) {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"submitted_total": draft.Total.String(),
			"items_total":     sum.String(),
		}), "order.total_mismatch")
	}

	order, err := s.persistWithFreshNumber(ctx, draft)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)
	s.metrics.IncCreated(order.Source)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"total":      order.Total.String(),
		"item_count": len(order.Items),
	}), "order.created")

	outcome := s.confirm(ctx, order)
	emails := EmailSummary{
		Customer: string(outcome.CustomerStatus()),
		Admin:    string(outcome.Admin.Status),
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"customer_email": emails.Customer,
		"admin_email":    emails.Admin,
	}), "order.notifications")

	return &CreateResult{
		Order:       order,
		Emails:      emails,
		WhatsAppURL: notifications.WhatsAppLink(order, s.shopPhone),
	}, nil
}

// confirm sends the confirmation pair. The order is already committed, so a
// panicking notifier is reported as failed sends rather than a failed create.
func (s *Service) confirm(ctx context.Context, order *models.Order) (out notifications.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logg.Error(ctx, "order.notify_panic", fmt.Errorf("notifier panic: %v", r))
			out = notifications.Outcome{Admin: notifications.Result{Status: notifications.StatusFailed}}
			if order.CustomerEmail != "" {
				out.Customer = &notifications.Result{Status: notifications.StatusFailed}
			}
		}
	}()
	return s.notifier.SendOrderConfirmation(ctx, order)
}

func (s *Service) notifyStatus(ctx context.Context, order *models.Order, update models.StatusUpdate) (res *notifications.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logg.Error(ctx, "order.notify_panic", fmt.Errorf("notifier panic: %v", r))
			res = &notifications.Result{Status: notifications.StatusFailed}
		}
	}()
	return s.notifier.SendStatusUpdate(ctx, order, update)
}

func (s *Service) persistWithFreshNumber(ctx context.Context, draft models.Order) (*models.Order, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		row := draft
		row.OrderNumber = s.numbers.Generate()

		created, err := s.persist(ctx, &row)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, ErrDuplicateOrderNumber) {
			s.metrics.IncCreateFailure("persistence")
			s.logg.Error(ctx, "order.persist_failed", err)
			return nil, asPersistenceError(err)
		}

		lastErr = err
		s.metrics.IncCollision()
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"order_number": row.OrderNumber,
			"attempt":      attempt,
		}), "order.number_collision")
	}

	s.metrics.IncCreateFailure("number_exhausted")
	err := pkgerrors.Wrap(pkgerrors.CodeInternal, lastErr, fmt.Sprintf("no free order number after %d attempts", s.maxAttempts))
	s.logg.Error(ctx, "order.persist_failed", err)
	return nil, err
}

func (s *Service) persist(ctx context.Context, row *models.Order) (*models.Order, error) {
	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		created, err = s.repo.Create(ctx, tx, row)
		if err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   created.ID,
			Actor:         &outbox.ActorRef{Kind: outbox.ActorCustomer},
			Data: payloads.OrderCreatedEvent{
				OrderNumber: created.OrderNumber,
				Total:       created.Total,
				ItemCount:   len(created.Items),
				Source:      created.Source,
			},
			OccurredAt: created.CreatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func asPersistenceError(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist order")
}

func (s *Service) buildDraft(in CreateInput) models.Order {
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, models.OrderItem{
			Name:     strings.TrimSpace(item.Name),
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return models.Order{
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		CustomerEmail:   strings.TrimSpace(in.CustomerEmail),
		CustomerAddress: strings.TrimSpace(in.CustomerAddress),
		CustomerNotes:   strings.TrimSpace(in.CustomerNotes),
		Items:           items,
		Total:           in.Total,
		Status:          enums.OrderStatusPending,
		Source:          s.source,
	}
}

func validateCreate(in CreateInput) error {
	if len(in.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if !in.Total.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "order total must be greater than zero")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer phone is required")
	}
	for i, item := range in.Items {
		switch {
		case strings.TrimSpace(item.Name) == "":
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: name is required", i+1))
		case item.Quantity < 1:
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be at least 1", i+1))
		case item.Price.IsNegative():
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: price cannot be negative", i+1))
		}
	}
	return nil
}

func itemsTotal(items []models.OrderItem) money.Amount {
	sum := money.Zero()
	for _, item := range items {
		sum = sum.Add(money.LineTotal(item.Price, item.Quantity))
	}
	return sum
}

// UpdateStatus appends an admin status update, emits order_status_updated
// in the same transaction and, after commit, emails the customer when an
// address is on file.
func (s *Service) UpdateStatus(ctx context.Context, orderNumber string, in StatusUpdateInput) (*models.Order, error) {
	orderNumber = NormalizeOrderNumber(orderNumber)
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	if !in.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	completed := true
	if in.Completed != nil {
		completed = *in.Completed
	}
	appendIn := StatusAppend{
		Update: models.StatusUpdate{
			Status:      in.Status,
			Title:       strings.TrimSpace(in.Title),
			Description: strings.TrimSpace(in.Description),
			Date:        s.now().UTC(),
			Completed:   completed,
		},
		EstimatedDelivery: in.EstimatedDelivery,
		TrackingNumber:    in.TrackingNumber,
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		updated, err = s.repo.AppendStatusUpdate(ctx, tx, orderNumber, appendIn)
		if err != nil {
			return err
		}
		last := updated.StatusUpdates[len(updated.StatusUpdates)-1]
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusUpdated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   updated.ID,
			Actor:         &outbox.ActorRef{Kind: outbox.ActorAdmin, Username: in.Actor},
			Data: payloads.OrderStatusUpdatedEvent{
				OrderNumber:    updated.OrderNumber,
				PreviousStatus: previousStatus(updated),
				Status:         updated.Status,
				Title:          last.Title,
			},
		})
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && !pkgerrors.MetadataFor(typed.Code()).Fault {
			return nil, typed
		}
		s.logg.Error(s.logg.WithOrderNumber(ctx, orderNumber), "order.status_update_failed", err)
		return nil, asPersistenceError(err)
	}

	ctx = s.logg.WithOrderNumber(ctx, updated.OrderNumber)
	s.metrics.IncStatusUpdate(string(updated.Status))
	s.logg.Info(s.logg.WithField(ctx, "status", updated.Status), "order.status_updated")

	if updated.CustomerEmail != "" {
		last := updated.StatusUpdates[len(updated.StatusUpdates)-1]
		if res := s.notifyStatus(ctx, updated, last); res != nil {
			s.logg.Info(s.logg.WithField(ctx, "email_status", res.Status), "order.status_notification")
		}
	}
	return updated, nil
}

// previousStatus reads the status before the latest append. The first
// timeline entry is always the placed entry, so a single-entry timeline
// means the order was pending.
func previousStatus(o *models.Order) enums.OrderStatus {
	if len(o.StatusUpdates) < 2 {
		return enums.OrderStatusPending
	}
	return o.StatusUpdates[len(o.StatusUpdates)-2].Status
}

// Get returns the full order for admin views.
func (s *Service) Get(ctx context.Context, orderNumber string) (*models.Order, error) {
	order, err := s.repo.FindByOrderNumber(ctx, NormalizeOrderNumber(orderNumber), LookupFilters{})
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *Service) List(ctx context.Context, params ListParams) (ListResult, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}
