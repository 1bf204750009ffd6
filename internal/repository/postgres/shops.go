package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

type shopRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewShopRepository creates a new shop repository
func NewShopRepository(db *sql.DB, logger *zap.Logger) *shopRepository {
	return &shopRepository{
		db:     db,
		logger: logger,
	}
}

func (r *shopRepository) GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	query := `
		SELECT id, shop_domain, is_active, created_at, updated_at
		FROM shops
		WHERE shop_domain = $1
	`

	var shop domain.Shop
	err := r.db.QueryRowContext(ctx, query, shopDomain).Scan(
		&shop.ID,
		&shop.ShopDomain,
		&shop.IsActive,
		&shop.CreatedAt,
		&shop.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "shop", ID: shopDomain}
	}
	if err != nil {
		r.logger.Error("Failed to get shop by domain", zap.String("shop", shopDomain), zap.Error(err))
		return nil, err
	}

	return &shop, nil
}

func (r *shopRepository) Upsert(ctx context.Context, shop *domain.Shop) error {
	// is_active is only written on insert; activation goes through SetActive
	query := `
		INSERT INTO shops (id, shop_domain, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (shop_domain) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id, is_active, created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, uuid.New(), shop.ShopDomain, shop.IsActive, now).Scan(
		&shop.ID,
		&shop.IsActive,
		&shop.CreatedAt,
		&shop.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert shop", zap.String("shop", shop.ShopDomain), zap.Error(err))
		return err
	}

	return nil
}

func (r *shopRepository) SetActive(ctx context.Context, shopDomain string, active bool) error {
	query := `
		UPDATE shops
		SET is_active = $2, updated_at = $3
		WHERE shop_domain = $1
	`

	res, err := r.db.ExecContext(ctx, query, shopDomain, active, time.Now())
	if err != nil {
		r.logger.Error("Failed to update shop status", zap.String("shop", shopDomain), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "shop", ID: shopDomain}
	}

	return nil
}
