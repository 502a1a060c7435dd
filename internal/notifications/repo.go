package notifications

import (
	"context"
	"time"

	"github.com/collabinvest/cil-storefront/pkg/db/models"
	"github.com/collabinvest/cil-storefront/pkg/enums"
	pkgerrors "github.com/collabinvest/cil-storefront/pkg/errors"
	"github.com/collabinvest/cil-storefront/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists the email audit trail.
type Repository interface {
	Create(ctx context.Context, record *models.EmailRecord) error
	ListRecent(ctx context.Context, params pagination.Params) (pagination.Page[models.EmailRecord], error)
	DeliveryCounts(ctx context.Context) (DeliveryCounts, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// DeliveryCounts tallies recorded send attempts by outcome.
type DeliveryCounts struct {
	Sent   int64 `json:"sent"`
	Failed int64 `json:"failed"`
}

// Rate is the share of attempts that were sent, as a percentage. It is
// zero when nothing has been recorded.
func (d DeliveryCounts) Rate() float64 {
	total := d.Sent + d.Failed
	if total == 0 {
		return 0
	}
	return float64(d.Sent) * 100 / float64(total)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an email record repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, record *models.EmailRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repositoryImpl) ListRecent(ctx context.Context, params pagination.Params) (pagination.Page[models.EmailRecord], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[models.EmailRecord]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query := r.db.WithContext(ctx).Model(&models.EmailRecord{})
	if cursor != nil {
		query = query.Where("(sent_at < ?) OR (sent_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []models.EmailRecord
	if err := query.Order("sent_at DESC, id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&records).Error; err != nil {
		return pagination.Page[models.EmailRecord]{}, err
	}
	return pagination.Trim(records, params.Limit, func(rec models.EmailRecord) pagination.Cursor {
		return pagination.Cursor{CreatedAt: rec.SentAt, ID: rec.ID}
	}), nil
}

func (r *repositoryImpl) DeliveryCounts(ctx context.Context) (DeliveryCounts, error) {
	var rows []struct {
		Status enums.EmailStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.EmailRecord{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return DeliveryCounts{}, err
	}

	var counts DeliveryCounts
	for _, row := range rows {
		switch row.Status {
		case enums.EmailStatusSent:
			counts.Sent = row.Count
		case enums.EmailStatusFailed:
			counts.Failed = row.Count
		}
	}
	return counts, nil
}

func (r *repositoryImpl) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("sent_at < ?", cutoff).
		Delete(&models.EmailRecord{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
