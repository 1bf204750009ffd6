package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/config"
	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/internal/shopify"
)

// AdminAPI is the Shopify Admin surface the services use for one shop
type AdminAPI interface {
	ProductMetafields(ctx context.Context, productGID string) (*domain.Product, error)
	ListProducts(ctx context.Context, first int, after, query string) (*domain.ProductPage, error)
	UpdateMetafields(ctx context.Context, productGID string, updates []domain.MetafieldUpdate) error
	CreateMetafields(ctx context.Context, productGID string, creates []domain.MetafieldCreate) error
	DeleteMetafield(ctx context.Context, id string) error
	RegisterWebhook(ctx context.Context, topic, callbackURL string) (string, error)
	Forward(ctx context.Context, body []byte) (int, []byte, error)
}

var _ AdminAPI = (*shopify.Client)(nil)

// AdminAPIFactory returns a client authenticated with the session's access token
type AdminAPIFactory func(session *domain.Session) AdminAPI

// NewAdminAPIFactory builds Shopify GraphQL clients sharing one retry policy
func NewAdminAPIFactory(cfg config.ShopifyConfig, retry shopify.RetryPolicy, logger *zap.Logger, opts ...shopify.Option) AdminAPIFactory {
	opts = append([]shopify.Option{shopify.WithRetryPolicy(retry)}, opts...)
	return func(session *domain.Session) AdminAPI {
		return shopify.NewClient(cfg, session.Shop, session.AccessToken, logger, opts...)
	}
}
