package migrate

import (
	"context"
	"fmt"

	"github.com/collabinvest/cil-storefront/pkg/config"
	"github.com/collabinvest/cil-storefront/pkg/db"
	"github.com/collabinvest/cil-storefront/pkg/db/models"
	"github.com/collabinvest/cil-storefront/pkg/logger"
)

// MaybeRunDev migrates on startup when running in dev with auto-migrate on.
// sqlite installs get their schema from the models since the SQL files are
// Postgres-only.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": client.Dialect()})

	if client.Dialect() == "sqlite3" {
		logg.Info(ctx, "migrate.automigrate")
		if err := client.DB().WithContext(ctx).AutoMigrate(
			&models.Order{},
			&models.EmailRecord{},
			&models.OutboxEvent{},
			&models.OutboxDLQ{},
		); err != nil {
			return fmt.Errorf("sqlite automigrate: %w", err)
		}
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	logg.Info(ctx, "migrate.goose.up")
	if err := Run(ctx, sqlDB, "", "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "migrate.goose.done")
	return nil
}
