package cron

import (
	"context"
	"fmt"

	"github.com/collabinvest/cil-storefront/pkg/logger"
	"github.com/collabinvest/cil-storefront/pkg/session"
)

type SessionSweepJobParams struct {
	Logger *logger.Logger
	Store  session.Store
}

func NewSessionSweepJob(params SessionSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("session store required")
	}
	return &sessionSweepJob{logg: params.Logger, store: params.Store}, nil
}

// sessionSweepJob removes admin sessions idle past their deadline.
type sessionSweepJob struct {
	logg  *logger.Logger
	store session.Store
}

func (j *sessionSweepJob) Name() string { return "admin-session-sweep" }

func (j *sessionSweepJob) Run(ctx context.Context) error {
	removed, err := j.store.SweepExpired(ctx)
	if err != nil {
		return fmt.Errorf("sweep sessions: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "sessions_removed", removed), "cron.session_sweep")
	return nil
}
