package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/collabinvest/cil-storefront/pkg/config"
	"github.com/collabinvest/cil-storefront/pkg/db/models"
	"github.com/collabinvest/cil-storefront/pkg/enums"
	"github.com/collabinvest/cil-storefront/pkg/logger"
	"github.com/collabinvest/cil-storefront/pkg/outbox"
	"github.com/collabinvest/cil-storefront/pkg/outbox/registry"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultBatchSize   = 50
	defaultPoll        = 500 * time.Millisecond
	defaultMaxAttempts = 10
	publishTimeout     = 15 * time.Second
	maxBackoff         = 10 * time.Second
	jitterWindow       = 250 * time.Millisecond
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

// publisher is satisfied by both the pubsub client and the kafka producer.
type publisher interface {
	Ping(context.Context) error
	Publish(ctx context.Context, topic string, msg outbox.Message) error
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type ServiceParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            dbClient
	Publisher     publisher
	Backend       string
	Repository    outboxRepository
	Registry      registryResolver
	DLQRepository dlqRepository
}

// Service drains order events from the outbox table onto the configured broker.
type Service struct {
	logg      *logger.Logger
	db        dbClient
	repo      outboxRepository
	publisher publisher
	backend   string
	registry  registryResolver
	dlq       dlqRepository

	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewService(p ServiceParams) (*Service, error) {
	required := []struct {
		ok   bool
		name string
	}{
		{p.Config != nil, "config"},
		{p.Logger != nil, "logger"},
		{p.DB != nil, "database client"},
		{p.Publisher != nil, "publisher"},
		{p.Repository != nil, "outbox repository"},
		{p.Registry != nil, "event registry"},
		{p.DLQRepository != nil, "dlq repository"},
	}
	for _, r := range required {
		if !r.ok {
			return nil, fmt.Errorf("%s is required", r.name)
		}
	}

	s := &Service{
		logg:         p.Logger,
		db:           p.DB,
		repo:         p.Repository,
		publisher:    p.Publisher,
		backend:      p.Backend,
		registry:     p.Registry,
		dlq:          p.DLQRepository,
		batchSize:    p.Config.Outbox.BatchSize,
		maxAttempts:  p.Config.Outbox.MaxAttempts,
		pollInterval: time.Duration(p.Config.Outbox.PollIntervalMS) * time.Millisecond,
	}
	if s.backend == "" {
		s.backend = "publisher"
	}
	if s.batchSize <= 0 {
		s.batchSize = defaultBatchSize
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultMaxAttempts
	}
	if s.pollInterval <= 0 {
		s.pollInterval = defaultPoll
	}
	return s, nil
}

// Run polls until ctx is cancelled. Empty polls sleep for the poll interval,
// failed batches back off exponentially up to maxBackoff.
func (s *Service) Run(ctx context.Context) error {
	for name, ping := range map[string]func(context.Context) error{
		"database": s.db.Ping,
		s.backend:  s.publisher.Ping,
	} {
		if err := ping(ctx); err != nil {
			s.logg.Error(ctx, name+" ping failed", err)
			return fmt.Errorf("%s ping failed: %w", name, err)
		}
	}

	backoff := s.pollInterval
	for ctx.Err() == nil {
		processed, err := s.processBatch(ctx)
		wait := time.Duration(0)
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox batch failed", err)
			backoff = nextBackoff(backoff, s.pollInterval, maxBackoff)
			wait = withJitter(backoff)
		case processed:
			backoff = s.pollInterval
		default:
			backoff = s.pollInterval
			wait = withJitter(s.pollInterval)
		}
		if err := sleep(ctx, wait); err != nil {
			break
		}
	}
	s.logg.Info(ctx, "outbox publisher stopped")
	return ctx.Err()
}

// disposition is what happens to a row after one publish attempt.
type disposition struct {
	reason enums.OutboxDLQErrorReason // set when the row goes to the DLQ
	err    error
	topic  string
}

func (d disposition) terminal() bool { return d.reason != "" }

// processBatch locks a batch of rows and settles each one inside the same
// transaction. A failing row never blocks the rows behind it.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	processed := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return err
		}
		processed = len(events) > 0
		for _, event := range events {
			if err := s.settle(ctx, tx, event, s.attempt(ctx, event)); err != nil {
				return err
			}
		}
		return nil
	})
	return processed, err
}

func (s *Service) attempt(ctx context.Context, event models.OutboxEvent) disposition {
	resolved, err := s.registry.Resolve(event)
	if err != nil {
		return disposition{reason: enums.OutboxDLQReasonNonRetryable, err: err}
	}
	topic := resolved.Descriptor.Topic
	if topic == "" {
		return disposition{reason: enums.OutboxDLQReasonNonRetryable, err: fmt.Errorf("no topic for %s", event.EventType)}
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	err = s.publisher.Publish(publishCtx, topic, orderMessage(event, resolved))

	var nonRetryable registry.NonRetryableError
	switch {
	case err == nil:
		return disposition{topic: topic}
	case errors.As(err, &nonRetryable):
		return disposition{reason: enums.OutboxDLQReasonNonRetryable, err: err, topic: topic}
	case event.AttemptCount+1 >= s.maxAttempts:
		return disposition{reason: enums.OutboxDLQReasonMaxAttempts, err: fmt.Errorf("gave up after %d attempts: %w", event.AttemptCount+1, err), topic: topic}
	default:
		return disposition{err: err, topic: topic}
	}
}

func (s *Service) settle(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, d disposition) error {
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"outbox_id":     event.ID.String(),
		"event_type":    event.EventType,
		"aggregate_id":  event.AggregateID.String(),
		"attempt_count": event.AttemptCount,
		"topic":         d.topic,
	})

	switch {
	case d.err == nil:
		if err := s.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		s.logg.Info(logCtx, "outbox event published")
	case d.terminal():
		s.logg.Warn(s.logg.WithFields(logCtx, map[string]any{"error": d.err.Error(), "error_reason": d.reason}), "outbox event dead-lettered")
		msg := d.err.Error()
		entry := models.OutboxDLQ{
			EventID:       event.ID,
			EventType:     event.EventType,
			AggregateType: event.AggregateType,
			AggregateID:   event.AggregateID,
			Payload:       event.Payload,
			ErrorReason:   d.reason,
			ErrorMessage:  &msg,
			AttemptCount:  event.AttemptCount,
			FailedAt:      time.Now().UTC(),
		}
		if err := s.dlq.InsertTx(tx, entry); err != nil {
			return fmt.Errorf("insert dlq %s: %w", event.ID, err)
		}
		if err := s.repo.MarkTerminalTx(tx, event.ID, d.err, s.maxAttempts); err != nil {
			return fmt.Errorf("mark terminal %s: %w", event.ID, err)
		}
	default:
		s.logg.Warn(s.logg.WithField(logCtx, "error", d.err.Error()), "outbox publish failed, will retry")
		if err := s.repo.MarkFailedTx(tx, event.ID, d.err); err != nil {
			return fmt.Errorf("mark failed %s: %w", event.ID, err)
		}
	}
	return nil
}

// orderMessage keys by order number so every update for one order lands on
// the same partition.
func orderMessage(event models.OutboxEvent, resolved *registry.ResolvedEvent) outbox.Message {
	return outbox.Message{
		Key:  resolved.OrderNumber(),
		Data: event.Payload,
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   event.AggregateID.String(),
			"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
		},
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, ceiling time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	return min(current*2, ceiling)
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
}
