package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/internal/metafield"
	"github.com/FilipposDe/shopify-fields-app/internal/repository"
	"github.com/FilipposDe/shopify-fields-app/internal/shopify"
	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

const (
	DefaultProductPageSize = 10
	MaxProductPageSize     = 50
	ProductSearchLimit     = 200
)

type productService struct {
	repos  *repository.Repositories
	admin  AdminAPIFactory
	logger *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(repos *repository.Repositories, admin AdminAPIFactory, logger *zap.Logger) *productService {
	return &productService{
		repos:  repos,
		admin:  admin,
		logger: logger,
	}
}

// List returns one page of the shop's products
func (s *productService) List(ctx context.Context, session *domain.Session, first int, after string) (*domain.ProductPage, error) {
	if first == 0 {
		first = DefaultProductPageSize
	}
	if first < 1 || first > MaxProductPageSize {
		return nil, &errors.ErrValidation{
			Message: "invalid page size",
			Fields:  map[string]string{"first": "first must be between 1 and 50"},
		}
	}
	return s.admin(session).ListProducts(ctx, first, after, "")
}

// Search returns up to ProductSearchLimit products matching query
func (s *productService) Search(ctx context.Context, session *domain.Session, query string) (*domain.ProductPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &errors.ErrValidation{Message: "query is required"}
	}
	return s.admin(session).ListProducts(ctx, ProductSearchLimit, "", query)
}

// Editor loads the shop's field definitions and the product's current values
func (s *productService) Editor(ctx context.Context, session *domain.Session, productID string) (*ProductEditor, error) {
	productGID, err := shopify.ProductGID(productID)
	if err != nil {
		return nil, &errors.ErrValidation{Message: err.Error()}
	}

	shop, err := resolveShop(ctx, s.repos, session.Shop)
	if err != nil {
		return nil, err
	}
	defs, err := s.repos.Field.ListByShop(ctx, shop.ID)
	if err != nil {
		return nil, err
	}

	product, err := s.admin(session).ProductMetafields(ctx, productGID)
	if err != nil {
		return nil, err
	}

	return &ProductEditor{
		ProductID: product.ID,
		Title:     product.Title,
		Fields:    defs,
		Values:    metafield.InitialValues(defs, product.Metafields),
	}, nil
}
