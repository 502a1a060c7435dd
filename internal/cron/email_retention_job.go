package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/collabinvest/cil-storefront/pkg/logger"
)

const emailRetentionDays = 180

type EmailRetentionJobParams struct {
	Logger     *logger.Logger
	Repository emailRetentionRepo
	Retention  int
}

type emailRetentionRepo interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

func NewEmailRetentionJob(params EmailRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("email record repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = emailRetentionDays
	}
	return &emailRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

// emailRetentionJob trims the email audit trail.
type emailRetentionJob struct {
	logg      *logger.Logger
	repo      emailRetentionRepo
	retention int
	now       func() time.Time
}

func (j *emailRetentionJob) Name() string { return "email-retention" }

func (j *emailRetentionJob) Run(ctx context.Context) error {
	cutoff := daysAgo(j.now(), j.retention)
	deleted, err := j.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("email retention: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	}), "cron.email_retention")
	return nil
}
