package orders

import (
	"context"
	"strings"

	pkgerrors "github.com/collabinvest/cil-storefront/pkg/errors"
	"github.com/collabinvest/cil-storefront/pkg/logger"
	"github.com/collabinvest/cil-storefront/pkg/metrics"
)

// NotFoundMessage is shown when no order matches the submitted details.
const NotFoundMessage = "Order not found. Please check your order number and contact details."

// TrackingService answers customer lookups. Not found is a normal outcome
// and is never logged as a failure.
type TrackingService struct {
	repo    orderReader
	logg    *logger.Logger
	metrics *metrics.OrderMetrics
}

func NewTrackingService(repo orderReader, logg *logger.Logger, m *metrics.OrderMetrics) *TrackingService {
	if logg == nil {
		logg = logger.Nop()
	}
	return &TrackingService{repo: repo, logg: logg, metrics: m}
}

// Track finds an order by number, optionally narrowed by email and phone.
func (t *TrackingService) Track(ctx context.Context, orderNumber, email, phone string) (*RedactedOrder, error) {
	orderNumber = NormalizeOrderNumber(orderNumber)
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}

	order, err := t.repo.FindByOrderNumber(ctx, orderNumber, LookupFilters{
		Email: strings.TrimSpace(email),
		Phone: strings.TrimSpace(phone),
	})
	if err != nil {
		t.metrics.IncLookup("error")
		return nil, err
	}
	if order == nil {
		t.metrics.IncLookup("not_found")
		t.logg.Info(t.logg.WithOrderNumber(ctx, orderNumber), "tracking.not_found")
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, NotFoundMessage)
	}
	t.metrics.IncLookup("found")
	return Redact(order), nil
}

// Lookup backs the by-number read. Callers get the redacted view unless
// full is set, which the HTTP layer only does for authenticated admins.
func (t *TrackingService) Lookup(ctx context.Context, orderNumber string, full bool) (any, error) {
	orderNumber = NormalizeOrderNumber(orderNumber)
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	order, err := t.repo.FindByOrderNumber(ctx, orderNumber, LookupFilters{})
	if err != nil {
		t.metrics.IncLookup("error")
		return nil, err
	}
	if order == nil {
		t.metrics.IncLookup("not_found")
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, NotFoundMessage)
	}
	t.metrics.IncLookup("found")
	if full {
		return order, nil
	}
	return Redact(order), nil
}
