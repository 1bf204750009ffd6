package mongodb

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/repository"
)

// NewRepositories creates a new set of repositories backed by one shop document per store
func NewRepositories(db *mongo.Database, logger *zap.Logger) *repository.Repositories {
	shops := db.Collection(shopsCollection)
	return &repository.Repositories{
		Shop:    NewShopRepository(shops, logger),
		Field:   NewFieldRepository(shops, logger),
		Session: NewSessionRepository(db.Collection(sessionsCollection), shops, logger),
	}
}
