// Package store opens the repositories selected by STORE_DRIVER.
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/config"
	"github.com/FilipposDe/shopify-fields-app/internal/repository"
	"github.com/FilipposDe/shopify-fields-app/internal/repository/memory"
	"github.com/FilipposDe/shopify-fields-app/internal/repository/mongodb"
	"github.com/FilipposDe/shopify-fields-app/internal/repository/postgres"
)

// Open connects to the configured store. migrate applies the postgres schema or
// the mongo indexes first. The returned func releases the connection.
func Open(ctx context.Context, cfg *config.Config, migrate bool, logger *zap.Logger) (*repository.Repositories, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if migrate {
			if err := postgres.RunMigrations(db, postgres.DefaultMigrationPath); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		logger.Info("Using postgres store", zap.String("database", cfg.Database.DBName))
		return postgres.NewRepositories(db, logger), func() { db.Close() }, nil

	case config.StoreDriverMongo:
		client, db, err := mongodb.NewConnection(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		if migrate {
			if err := mongodb.EnsureIndexes(ctx, db); err != nil {
				_ = client.Disconnect(context.Background())
				return nil, nil, err
			}
		}
		logger.Info("Using mongo store", zap.String("database", cfg.Mongo.Database))
		return mongodb.NewRepositories(db, logger), func() { _ = client.Disconnect(context.Background()) }, nil

	case config.StoreDriverMemory:
		logger.Warn("Using in-memory store; data is lost on restart")
		return memory.NewRepositories(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
}
