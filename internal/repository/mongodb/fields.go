package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

type fieldRepository struct {
	shops  *mongo.Collection
	logger *zap.Logger
}

// NewFieldRepository creates a field repository over the embedded shop.fields array
func NewFieldRepository(shops *mongo.Collection, logger *zap.Logger) *fieldRepository {
	return &fieldRepository{
		shops:  shops,
		logger: logger,
	}
}

func (r *fieldRepository) ListByShop(ctx context.Context, shopID string) ([]*domain.Field, error) {
	oid, err := primitive.ObjectIDFromHex(shopID)
	if err != nil {
		return nil, &errors.ErrNotFound{Resource: "shop", ID: shopID}
	}

	var doc shopDocument
	opts := options.FindOne().SetProjection(bson.M{"fields": 1})
	err = r.shops.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, &errors.ErrNotFound{Resource: "shop", ID: shopID}
	}
	if err != nil {
		r.logger.Error("Failed to list fields", zap.String("shop_id", shopID), zap.Error(err))
		return nil, err
	}

	fields := make([]*domain.Field, 0, len(doc.Fields))
	for i := range doc.Fields {
		fields = append(fields, doc.Fields[i].toDomain())
	}
	return fields, nil
}

func (r *fieldRepository) GetByID(ctx context.Context, shopID, id string) (*domain.Field, error) {
	shopOID, err := primitive.ObjectIDFromHex(shopID)
	if err != nil {
		return nil, &errors.ErrNotFound{Resource: "shop", ID: shopID}
	}
	fieldOID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &errors.ErrNotFound{Resource: "field", ID: id}
	}

	var doc shopDocument
	opts := options.FindOne().SetProjection(bson.M{"fields.$": 1})
	err = r.shops.FindOne(ctx, bson.M{"_id": shopOID, "fields._id": fieldOID}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments || (err == nil && len(doc.Fields) == 0) {
		return nil, &errors.ErrNotFound{Resource: "field", ID: id}
	}
	if err != nil {
		r.logger.Error("Failed to get field by ID", zap.String("field_id", id), zap.Error(err))
		return nil, err
	}
	return doc.Fields[0].toDomain(), nil
}

func (r *fieldRepository) Create(ctx context.Context, shopID string, field *domain.Field) error {
	shopOID, err := primitive.ObjectIDFromHex(shopID)
	if err != nil {
		return &errors.ErrNotFound{Resource: "shop", ID: shopID}
	}

	now := time.Now()
	doc := fieldDocument{
		ID:          primitive.NewObjectID(),
		Name:        field.Name,
		Description: field.Description,
		Type:        string(field.Type),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// The name guard in the filter makes the duplicate check and the push one atomic write
	res, err := r.shops.UpdateOne(ctx,
		bson.M{"_id": shopOID, "fields.name": bson.M{"$ne": field.Name}},
		bson.M{"$push": bson.M{"fields": doc}, "$set": bson.M{"updatedAt": now}},
	)
	if err != nil {
		r.logger.Error("Failed to create field", zap.String("shop_id", shopID), zap.Error(err))
		return err
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, shopOID, field.Name)
	}

	field.ID = doc.ID.Hex()
	field.CreatedAt = now
	field.UpdatedAt = now
	return nil
}

func (r *fieldRepository) Update(ctx context.Context, shopID string, field *domain.Field) error {
	shopOID, err := primitive.ObjectIDFromHex(shopID)
	if err != nil {
		return &errors.ErrNotFound{Resource: "shop", ID: shopID}
	}
	fieldOID, err := primitive.ObjectIDFromHex(field.ID)
	if err != nil {
		return &errors.ErrNotFound{Resource: "field", ID: field.ID}
	}

	field.UpdatedAt = time.Now()
	filter := bson.M{
		"_id":        shopOID,
		"fields._id": fieldOID,
		"fields": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"name": field.Name,
			"_id":  bson.M{"$ne": fieldOID},
		}}},
	}
	update := bson.M{"$set": bson.M{
		"fields.$.name":        field.Name,
		"fields.$.description": field.Description,
		"fields.$.type":        string(field.Type),
		"fields.$.updatedAt":   field.UpdatedAt,
		"updatedAt":            field.UpdatedAt,
	}}

	res, err := r.shops.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to update field", zap.String("field_id", field.ID), zap.Error(err))
		return err
	}
	if res.MatchedCount == 0 {
		n, err := r.shops.CountDocuments(ctx, bson.M{"_id": shopOID, "fields._id": fieldOID})
		if err != nil {
			return err
		}
		if n == 0 {
			return &errors.ErrNotFound{Resource: "field", ID: field.ID}
		}
		return &errors.ErrConflict{Message: fmt.Sprintf("Field with name: %q already exists", field.Name)}
	}
	return nil
}

func (r *fieldRepository) missOrConflict(ctx context.Context, shopOID primitive.ObjectID, name string) error {
	n, err := r.shops.CountDocuments(ctx, bson.M{"_id": shopOID})
	if err != nil {
		return err
	}
	if n == 0 {
		return &errors.ErrNotFound{Resource: "shop", ID: shopOID.Hex()}
	}
	return &errors.ErrConflict{Message: fmt.Sprintf("Field with name: %q already exists", name)}
}
