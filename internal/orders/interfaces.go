package orders

import (
	"context"

	"github.com/collabinvest/cil-storefront/internal/notifications"
	"github.com/collabinvest/cil-storefront/pkg/db/models"
	"github.com/collabinvest/cil-storefront/pkg/outbox"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists orders. Writes take the caller's transaction.
type Repository interface {
	Create(ctx context.Context, tx *gorm.DB, draft *models.Order) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string, filters LookupFilters) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	AppendStatusUpdate(ctx context.Context, tx *gorm.DB, orderNumber string, update StatusAppend) (*models.Order, error)
	List(ctx context.Context, params ListParams) (ListResult, error)
	Stats(ctx context.Context) (Stats, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Notifier sends the order emails. Outcomes are values; a failed send is
// never an error here.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) notifications.Outcome
	SendStatusUpdate(ctx context.Context, order *models.Order, update models.StatusUpdate) *notifications.Result
}

// orderReader is the read side the tracking service needs.
type orderReader interface {
	FindByOrderNumber(ctx context.Context, orderNumber string, filters LookupFilters) (*models.Order, error)
}
