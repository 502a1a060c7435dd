package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/collabinvest/cil-storefront/pkg/db"
	"github.com/collabinvest/cil-storefront/pkg/db/models"
	"github.com/collabinvest/cil-storefront/pkg/enums"
	pkgerrors "github.com/collabinvest/cil-storefront/pkg/errors"
	"github.com/collabinvest/cil-storefront/pkg/money"
	"github.com/collabinvest/cil-storefront/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const orderNumberIndex = "ux_orders_order_number"

func init() {
	db.RegisterUniqueIndex(orderNumberIndex, "orders.order_number")
}

// ErrDuplicateOrderNumber is returned by Create when the number is taken.
var ErrDuplicateOrderNumber = errors.New("duplicate order number")

type repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn, now: time.Now}
}

func (r *repository) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func (r *repository) Create(ctx context.Context, tx *gorm.DB, draft *models.Order) (*models.Order, error) {
	if draft == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order draft required")
	}
	now := r.now().UTC()
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.UpdatedAt = draft.CreatedAt
	if draft.Status == "" {
		draft.Status = enums.OrderStatusPending
	}
	if len(draft.StatusUpdates) == 0 {
		draft.StatusUpdates = []models.StatusUpdate{placedUpdate(draft.CreatedAt)}
	}

	if err := r.conn(ctx, tx).Create(draft).Error; err != nil {
		if db.IsUniqueViolation(err, orderNumberIndex) {
			return nil, ErrDuplicateOrderNumber
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist order")
	}
	return draft, nil
}

func placedUpdate(at time.Time) models.StatusUpdate {
	return models.StatusUpdate{
		Status:      enums.OrderStatusPending,
		Title:       enums.OrderStatusPending.DefaultTitle(),
		Description: "Your order has been received and is being reviewed.",
		Date:        at,
		Completed:   true,
	}
}

func (r *repository) FindByOrderNumber(ctx context.Context, orderNumber string, filters LookupFilters) (*models.Order, error) {
	q := r.db.WithContext(ctx).Where("order_number = ?", orderNumber)
	if email := strings.TrimSpace(filters.Email); email != "" {
		q = q.Where("LOWER(customer_email) = ?", strings.ToLower(email))
	}
	if phone := strings.TrimSpace(filters.Phone); phone != "" {
		q = q.Where("customer_phone = ?", phone)
	}
	return firstOrNil(q)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return firstOrNil(r.db.WithContext(ctx).Where("id = ?", id))
}

func firstOrNil(q *gorm.DB) (*models.Order, error) {
	var order models.Order
	if err := q.Take(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return &order, nil
}

// AppendStatusUpdate locks the row, checks the transition and appends the
// entry. Concurrent appends to one order serialise on the row lock.
func (r *repository) AppendStatusUpdate(ctx context.Context, tx *gorm.DB, orderNumber string, in StatusAppend) (*models.Order, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	q := tx.WithContext(ctx).Where("order_number = ?", orderNumber)
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var order models.Order
	err := q.Take(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock order")
	}

	next := in.Update.Status
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot move order from "+order.Status.String()+" to "+next.String())
	}

	now := r.now().UTC()
	update := in.Update
	if update.Date.IsZero() {
		update.Date = now
	}
	if strings.TrimSpace(update.Title) == "" {
		update.Title = next.DefaultTitle()
	}

	order.StatusUpdates = append(order.StatusUpdates, update)
	order.Status = next
	order.UpdatedAt = now
	if in.EstimatedDelivery != nil {
		order.EstimatedDelivery = in.EstimatedDelivery
	}
	if in.TrackingNumber != nil {
		order.TrackingNumber = in.TrackingNumber
	}

	err = tx.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":             order.Status,
			"status_updates":     order.StatusUpdates,
			"estimated_delivery": order.EstimatedDelivery,
			"tracking_number":    order.TrackingNumber,
			"updated_at":         order.UpdatedAt,
		}).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append status update")
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, params ListParams) (ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return ListResult{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	q := r.db.WithContext(ctx).Model(&models.Order{})
	if params.Status != nil {
		q = q.Where("status = ?", *params.Status)
	}
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	err = q.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return ListResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	return pagination.Trim(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	}), nil
}

func (r *repository) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	base := func() *gorm.DB { return r.db.WithContext(ctx).Model(&models.Order{}) }

	if err := base().Count(&stats.TotalOrders).Error; err != nil {
		return Stats{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count orders")
	}
	if err := base().Where("status = ?", enums.OrderStatusPending).Count(&stats.PendingOrders).Error; err != nil {
		return Stats{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count pending orders")
	}
	if err := base().Where("status = ?", enums.OrderStatusDelivered).Count(&stats.DeliveredOrders).Error; err != nil {
		return Stats{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count delivered orders")
	}

	revenue := money.Zero()
	err := base().
		Select("COALESCE(SUM(total), 0)").
		Where("status <> ?", enums.OrderStatusCancelled).
		Row().Scan(&revenue)
	if err != nil {
		return Stats{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum revenue")
	}
	stats.Revenue = revenue
	return stats, nil
}
