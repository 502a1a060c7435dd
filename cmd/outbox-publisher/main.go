package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/collabinvest/cil-storefront/pkg/config"
	"github.com/collabinvest/cil-storefront/pkg/db"
	"github.com/collabinvest/cil-storefront/pkg/kafka"
	"github.com/collabinvest/cil-storefront/pkg/logger"
	"github.com/collabinvest/cil-storefront/pkg/migrate"
	"github.com/collabinvest/cil-storefront/pkg/outbox"
	"github.com/collabinvest/cil-storefront/pkg/outbox/registry"
	"github.com/collabinvest/cil-storefront/pkg/pubsub"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "outbox-publisher"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "outbox-publisher"

	logg = logger.New(logger.Options{
		ServiceName: "outbox-publisher",
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

	pub, topic, closePublisher, err := openPublisher(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap publisher", err)
		os.Exit(1)
	}
	defer func() {
		if err := closePublisher(); err != nil {
			logg.Error(context.Background(), "error closing publisher", err)
		}
	}()

	eventRegistry, err := registry.NewEventRegistry(topic)
	if err != nil {
		logg.Error(context.Background(), "failed to build event registry", err)
		os.Exit(1)
	}
	service, err := NewService(ServiceParams{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Publisher:     pub,
		Backend:       cfg.Outbox.Backend,
		Repository:    outbox.NewRepository(dbClient.DB()),
		Registry:      eventRegistry,
		DLQRepository: outbox.NewDLQRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox publisher", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "outbox-publisher",
		"backend":     cfg.Outbox.Backend,
		"topic":       topic,
	})
	logg.Info(ctx, "starting outbox publisher")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "outbox publisher stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "outbox publisher shutting down gracefully")
}

// openPublisher returns the broker selected by CIL_OUTBOX_BACKEND together
// with the topic order events go to.
func openPublisher(ctx context.Context, cfg *config.Config, logg *logger.Logger) (publisher, string, func() error, error) {
	switch cfg.Outbox.Backend {
	case "pubsub":
		client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return nil, "", nil, err
		}
		return client, cfg.PubSub.OrdersTopic, client.Close, nil
	case "", "kafka":
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return nil, "", nil, err
		}
		return producer, cfg.Kafka.OrdersTopic, producer.Close, nil
	default:
		return nil, "", nil, fmt.Errorf("unsupported outbox backend %q", cfg.Outbox.Backend)
	}
}
