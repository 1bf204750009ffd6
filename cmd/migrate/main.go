package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/config"
	"github.com/FilipposDe/shopify-fields-app/internal/repository/mongodb"
	"github.com/FilipposDe/shopify-fields-app/internal/repository/postgres"
)

// Applies the postgres schema, or the mongo indexes when STORE_DRIVER=mongo.
// An optional argument overrides the migration file path.
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, db, err := mongodb.NewConnection(ctx, cfg.Mongo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to mongo: %v\n", err)
			os.Exit(1)
		}
		defer client.Disconnect(context.Background())

		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create indexes: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Indexes ensured on mongo database '%s'.\n", cfg.Mongo.Database)

	case config.StoreDriverPostgres:
		db, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		migrationPath := postgres.DefaultMigrationPath
		if len(os.Args) > 1 {
			migrationPath = os.Args[1]
		}
		if err := postgres.RunMigrations(db, migrationPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error executing migration: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Migration completed successfully!")

	default:
		logger.Info("Nothing to migrate", zap.String("store", cfg.StoreDriver))
	}
}
