package repository

import (
	"context"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
)

// ShopRepository defines shop data access methods
type ShopRepository interface {
	GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error)
	// Upsert creates the shop if its domain is unknown and fills in shop.ID
	Upsert(ctx context.Context, shop *domain.Shop) error
	SetActive(ctx context.Context, shopDomain string, active bool) error
}

// FieldRepository defines field data access methods. Fields are always scoped to a shop.
type FieldRepository interface {
	ListByShop(ctx context.Context, shopID string) ([]*domain.Field, error)
	GetByID(ctx context.Context, shopID, id string) (*domain.Field, error)
	// Create returns *errors.ErrConflict when the shop already has a field with that name
	Create(ctx context.Context, shopID string, field *domain.Field) error
	Update(ctx context.Context, shopID string, field *domain.Field) error
}

// SessionRepository defines OAuth session storage methods
type SessionRepository interface {
	// Store creates or replaces a session; the shop record is created when missing
	Store(ctx context.Context, session *domain.Session) error
	Load(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByShop(ctx context.Context, shopDomain string) error
}

// Repositories aggregates all repositories
type Repositories struct {
	Shop    ShopRepository
	Field   FieldRepository
	Session SessionRepository
}
