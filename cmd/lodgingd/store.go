package main

import (
	"context"
	"fmt"

	"github.com/MarkoPoloResearchLab/lodging/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/lodging/internal/store/pgstore"
	"github.com/MarkoPoloResearchLab/lodging/pkg/lodging"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// openLodgingStore opens the configured store. SQLite databases are migrated on open;
// server databases are expected to be migrated with the migrate command.
func openLodgingStore(ctx context.Context, cfg databaseConfig, logger *zap.Logger) (lodging.Store, func(), error) {
	if cfg.StoreDriver == storeDriverPGX {
		pool, err := openPool(ctx, cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("store opened", zap.String("store", storeDriverPGX))
		return pgstore.New(pool), pool.Close, nil
	}
	database, err := gormstore.Open(ctx, cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("database open: %w", err)
	}
	cleanup := func() { _ = database.Close() }
	if database.Driver == gormstore.DriverSQLite {
		if err := gormstore.Migrate(ctx, database.DB); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	logger.Info("store opened", zap.String("store", storeDriverGORM), zap.String("driver", database.Driver))
	return gormstore.New(database.DB), cleanup, nil
}

func openPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return pool, nil
}
