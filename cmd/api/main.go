package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/collabinvest/cil-storefront/api/routes"
	"github.com/collabinvest/cil-storefront/internal/admin"
	"github.com/collabinvest/cil-storefront/internal/notifications"
	"github.com/collabinvest/cil-storefront/internal/orders"
	"github.com/collabinvest/cil-storefront/pkg/config"
	"github.com/collabinvest/cil-storefront/pkg/db"
	"github.com/collabinvest/cil-storefront/pkg/logger"
	"github.com/collabinvest/cil-storefront/pkg/metrics"
	"github.com/collabinvest/cil-storefront/pkg/migrate"
	"github.com/collabinvest/cil-storefront/pkg/outbox"
	"github.com/collabinvest/cil-storefront/pkg/redis"
	"github.com/collabinvest/cil-storefront/pkg/session"
	"github.com/collabinvest/cil-storefront/pkg/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api exited", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry, "cil-api")
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	shutdownMeters, err := telemetry.InitMeterProvider(registry, "cil-api", cfg.Telemetry.ServiceVer)
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		_ = dbClient.Close()
		return err
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = multierr.Combine(err,
			shutdownTracing(shutdownCtx),
			shutdownMeters(shutdownCtx),
			redisClient.Close(),
			dbClient.Close(),
		)
	}()

	sessions, err := session.Open(cfg.Admin.SessionStore, redisClient, cfg.Admin.SessionIdleTimeout)
	if err != nil {
		return err
	}
	// cron-worker cannot reach an in-process store, so the API sweeps it.
	if strings.EqualFold(cfg.Admin.SessionStore, session.KindMemory) {
		go session.Sweep(ctx, sessions, cfg.Admin.SessionSweepEvery, func(removed int, err error) {
			if err != nil {
				logg.Error(ctx, "session.sweep_failed", err)
				return
			}
			if removed > 0 {
				logg.Info(logg.WithField(ctx, "removed", removed), "session.sweep")
			}
		})
	}

	mailer, err := notifications.NewMailer(cfg.Mail, logg)
	if err != nil {
		return err
	}
	emailRepo := notifications.NewRepository(dbClient.DB())
	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		Mailer:   mailer,
		Repo:     emailRepo,
		Logger:   logg,
		Metrics:  metrics.NewNotificationMetrics(registry),
		From:     cfg.Mail.From,
		AdminTo:  cfg.Mail.AdminTo,
		ShopName: cfg.Shop.Name,
	})
	if err != nil {
		return err
	}

	orderMetrics := metrics.NewOrderMetrics(registry)
	orderRepo := orders.NewRepository(dbClient.DB())
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:              orderRepo,
		Tx:                dbClient,
		Outbox:            outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Notifier:          dispatcher,
		Logger:            logg,
		Metrics:           orderMetrics,
		ShopPhone:         cfg.Shop.WhatsAppPhone,
		Source:            cfg.Orders.Source,
		NumberMaxAttempts: cfg.Orders.NumberMaxAttempts,
	})
	if err != nil {
		return err
	}

	activity, err := admin.NewActivityLog(redisClient, cfg.Admin.ActivityLogLimit)
	if err != nil {
		return err
	}
	adminService, err := admin.NewService(admin.ServiceParams{
		Admin:    cfg.Admin,
		JWT:      cfg.JWT,
		Sessions: sessions,
		Orders:   orderService,
		Emails:   emailRepo,
		Activity: activity,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	handler := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		RateLimits:  redisClient,
		Idempotency: redisClient,
		Sessions:    session.StoreChecker{Store: sessions},
		Orders:      orderService,
		Tracking:    orders.NewTrackingService(orderRepo, logg, orderMetrics),
		Admin:       adminService,
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
