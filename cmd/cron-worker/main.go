package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/collabinvest/cil-storefront/internal/cron"
	"github.com/collabinvest/cil-storefront/internal/notifications"
	"github.com/collabinvest/cil-storefront/pkg/config"
	"github.com/collabinvest/cil-storefront/pkg/db"
	"github.com/collabinvest/cil-storefront/pkg/logger"
	"github.com/collabinvest/cil-storefront/pkg/metrics"
	"github.com/collabinvest/cil-storefront/pkg/migrate"
	"github.com/collabinvest/cil-storefront/pkg/outbox"
	"github.com/collabinvest/cil-storefront/pkg/redis"
	"github.com/collabinvest/cil-storefront/pkg/session"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var (
		redisClient *redis.Client
		lock        cron.Lock = &cron.LocalLock{}
	)
	if cfg.Admin.SessionStore != session.KindMemory {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()

		lock, err = cron.NewRedisLock(redisClient, redisClient.CronLockKey(cfg.App.Env), 0)
		if err != nil {
			logg.Error(context.Background(), "failed to create cron lock", err)
			os.Exit(1)
		}
	}

	registry, err := buildRegistry(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build cron jobs", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"interval":    cfg.Cron.Interval.String(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

const retentionEvery = 24 * time.Hour

// buildRegistry assembles the maintenance jobs. The session sweep only runs
// against redis; in-memory sessions live inside the api process and expire
// on access there.
func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*cron.Registry, error) {
	registry := cron.NewRegistry()

	if redisClient != nil {
		store, err := session.NewRedisStore(redisClient, cfg.Admin.SessionIdleTimeout)
		if err != nil {
			return nil, err
		}
		sweep, err := cron.NewSessionSweepJob(cron.SessionSweepJobParams{Logger: logg, Store: store})
		if err != nil {
			return nil, err
		}
		if err := registry.Register(sweep, cfg.Admin.SessionSweepEvery); err != nil {
			return nil, err
		}
	}

	emails, err := cron.NewEmailRetentionJob(cron.EmailRetentionJobParams{
		Logger:     logg,
		Repository: notifications.NewRepository(dbClient.DB()),
		Retention:  cfg.Cron.EmailRetentionDays,
	})
	if err != nil {
		return nil, err
	}
	if err := registry.Register(emails, retentionEvery); err != nil {
		return nil, err
	}

	events, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		Repository: outbox.NewRepository(dbClient.DB()),
		Retention:  cfg.Outbox.RetentionDays,
	})
	if err != nil {
		return nil, err
	}
	if err := registry.Register(events, retentionEvery); err != nil {
		return nil, err
	}
	return registry, nil
}
