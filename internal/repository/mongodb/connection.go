package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/FilipposDe/shopify-fields-app/internal/config"
)

const (
	shopsCollection    = "shops"
	sessionsCollection = "sessions"
)

// NewConnection connects to MongoDB and returns the app database
func NewConnection(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetRetryWrites(true))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the unique indexes the repositories rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(shopsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "shopDomain", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create shops index: %w", err)
	}

	_, err = db.Collection(sessionsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "sessionData.shop", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create sessions indexes: %w", err)
	}
	return nil
}
