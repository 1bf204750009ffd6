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

type sessionRepository struct {
	sessions *mongo.Collection
	shops    *shopRepository
	logger   *zap.Logger
}

// NewSessionRepository creates a session repository; sessions reference their shop document
func NewSessionRepository(sessions, shops *mongo.Collection, logger *zap.Logger) *sessionRepository {
	return &sessionRepository{
		sessions: sessions,
		shops:    NewShopRepository(shops, logger),
		logger:   logger,
	}
}

func (r *sessionRepository) Store(ctx context.Context, session *domain.Session) error {
	if session.Shop == "" {
		return &errors.ErrValidation{Message: "session has no shop"}
	}

	shop := &domain.Shop{ShopDomain: session.Shop}
	if err := r.shops.Upsert(ctx, shop); err != nil {
		return err
	}
	shopOID, err := objectIDFromHex(shop.ID)
	if err != nil {
		return err
	}

	session.UpdatedAt = time.Now()
	doc := sessionDocument{
		SessionID: session.ID,
		SessionData: sessionData{
			Shop:        session.Shop,
			State:       session.State,
			Scope:       session.Scope,
			AccessToken: session.AccessToken,
			IsOnline:    session.IsOnline,
			Expires:     session.Expires,
			UpdatedAt:   session.UpdatedAt,
		},
		Shop: shopOID,
	}

	_, err = r.sessions.ReplaceOne(ctx, bson.M{"sessionId": session.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to store session", zap.String("session_id", session.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *sessionRepository) Load(ctx context.Context, id string) (*domain.Session, error) {
	var doc sessionDocument
	err := r.sessions.FindOne(ctx, bson.M{"sessionId": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, &errors.ErrNotFound{Resource: "session", ID: id}
	}
	if err != nil {
		r.logger.Error("Failed to load session", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.sessions.DeleteOne(ctx, bson.M{"sessionId": id})
	if err != nil {
		r.logger.Error("Failed to delete session", zap.String("session_id", id), zap.Error(err))
		return err
	}
	if res.DeletedCount == 0 {
		return &errors.ErrNotFound{Resource: "session", ID: id}
	}
	return nil
}

func (r *sessionRepository) DeleteByShop(ctx context.Context, shopDomain string) error {
	if _, err := r.sessions.DeleteMany(ctx, bson.M{"sessionData.shop": shopDomain}); err != nil {
		r.logger.Error("Failed to delete shop sessions", zap.String("shop", shopDomain), zap.Error(err))
		return err
	}
	return nil
}
