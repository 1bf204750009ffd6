package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

type fieldRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewFieldRepository creates a new field repository
func NewFieldRepository(db *sql.DB, logger *zap.Logger) *fieldRepository {
	return &fieldRepository{
		db:     db,
		logger: logger,
	}
}

func (r *fieldRepository) ListByShop(ctx context.Context, shopID string) ([]*domain.Field, error) {
	shopUUID, err := uuid.Parse(shopID)
	if err != nil {
		return nil, &errors.ErrNotFound{Resource: "shop", ID: shopID}
	}

	query := `
		SELECT id, name, description, type, created_at, updated_at
		FROM fields
		WHERE shop_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, shopUUID)
	if err != nil {
		r.logger.Error("Failed to list fields", zap.String("shop_id", shopID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	fields := []*domain.Field{}
	for rows.Next() {
		var f domain.Field
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.Type, &f.CreatedAt, &f.UpdatedAt); err != nil {
			r.logger.Error("Failed to scan field", zap.Error(err))
			return nil, err
		}
		fields = append(fields, &f)
	}
	return fields, rows.Err()
}

func (r *fieldRepository) GetByID(ctx context.Context, shopID, id string) (*domain.Field, error) {
	fieldUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, &errors.ErrNotFound{Resource: "field", ID: id}
	}

	query := `
		SELECT id, name, description, type, created_at, updated_at
		FROM fields
		WHERE shop_id = $1 AND id = $2
	`

	var f domain.Field
	err = r.db.QueryRowContext(ctx, query, shopID, fieldUUID).Scan(
		&f.ID,
		&f.Name,
		&f.Description,
		&f.Type,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "field", ID: id}
	}
	if err != nil {
		r.logger.Error("Failed to get field by ID", zap.String("field_id", id), zap.Error(err))
		return nil, err
	}

	return &f, nil
}

func (r *fieldRepository) Create(ctx context.Context, shopID string, field *domain.Field) error {
	query := `
		INSERT INTO fields (id, shop_id, name, description, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	now := time.Now()
	id := uuid.New()
	_, err := r.db.ExecContext(ctx, query, id, shopID, field.Name, field.Description, field.Type, now, now)
	if isUniqueViolation(err) {
		return &errors.ErrConflict{Message: fmt.Sprintf("Field with name: %q already exists", field.Name)}
	}
	if err != nil {
		r.logger.Error("Failed to create field", zap.String("shop_id", shopID), zap.Error(err))
		return err
	}

	field.ID = id.String()
	field.CreatedAt = now
	field.UpdatedAt = now
	return nil
}

func (r *fieldRepository) Update(ctx context.Context, shopID string, field *domain.Field) error {
	fieldUUID, err := uuid.Parse(field.ID)
	if err != nil {
		return &errors.ErrNotFound{Resource: "field", ID: field.ID}
	}

	query := `
		UPDATE fields
		SET name = $3, description = $4, type = $5, updated_at = $6
		WHERE shop_id = $1 AND id = $2
	`

	field.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query, shopID, fieldUUID, field.Name, field.Description, field.Type, field.UpdatedAt)
	if isUniqueViolation(err) {
		return &errors.ErrConflict{Message: fmt.Sprintf("Field with name: %q already exists", field.Name)}
	}
	if err != nil {
		r.logger.Error("Failed to update field", zap.String("field_id", field.ID), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "field", ID: field.ID}
	}

	return nil
}
