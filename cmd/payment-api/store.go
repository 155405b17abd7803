package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-api/internal/config"
	"github.com/akylbek/payment-system/payment-api/internal/repository"
	"github.com/akylbek/payment-system/payment-api/internal/telemetry"
)

// openStore connects to the configured database and makes sure the schema
// exists.
func openStore(ctx context.Context, cfg *config.Config) (*sql.DB, *repository.PaymentRepository, error) {
	db, err := repository.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL, cfg.MaxOpenConns)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	repo, err := repository.NewPaymentRepository(db, cfg.DatabaseDriver)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	if err := repo.InitDB(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("initialize database: %w", err)
	}

	telemetry.Logger.Info("Database ready", zap.String("driver", cfg.DatabaseDriver))
	return db, repo, nil
}
