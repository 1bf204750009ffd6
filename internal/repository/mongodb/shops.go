package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

type shopRepository struct {
	shops  *mongo.Collection
	logger *zap.Logger
}

// NewShopRepository creates a new shop repository
func NewShopRepository(shops *mongo.Collection, logger *zap.Logger) *shopRepository {
	return &shopRepository{
		shops:  shops,
		logger: logger,
	}
}

func (r *shopRepository) GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	var doc shopDocument
	opts := options.FindOne().SetProjection(bson.M{"fields": 0})
	err := r.shops.FindOne(ctx, bson.M{"shopDomain": shopDomain}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, &errors.ErrNotFound{Resource: "shop", ID: shopDomain}
	}
	if err != nil {
		r.logger.Error("Failed to get shop by domain", zap.String("shop", shopDomain), zap.Error(err))
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *shopRepository) Upsert(ctx context.Context, shop *domain.Shop) error {
	now := time.Now()
	update := bson.M{
		// shopDomain is seeded from the filter on insert
		"$setOnInsert": bson.M{
			"isActive":  shop.IsActive,
			"fields":    bson.A{},
			"createdAt": now,
		},
		"$set": bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"fields": 0})

	var doc shopDocument
	err := r.shops.FindOneAndUpdate(ctx, bson.M{"shopDomain": shop.ShopDomain}, update, opts).Decode(&doc)
	if err != nil {
		r.logger.Error("Failed to upsert shop", zap.String("shop", shop.ShopDomain), zap.Error(err))
		return err
	}

	*shop = *doc.toDomain()
	return nil
}

func (r *shopRepository) SetActive(ctx context.Context, shopDomain string, active bool) error {
	res, err := r.shops.UpdateOne(ctx,
		bson.M{"shopDomain": shopDomain},
		bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now()}},
	)
	if err != nil {
		r.logger.Error("Failed to update shop status", zap.String("shop", shopDomain), zap.Error(err))
		return err
	}
	if res.MatchedCount == 0 {
		return &errors.ErrNotFound{Resource: "shop", ID: shopDomain}
	}
	return nil
}
