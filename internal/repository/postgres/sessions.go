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

type sessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB, logger *zap.Logger) *sessionRepository {
	return &sessionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *sessionRepository) Store(ctx context.Context, session *domain.Session) error {
	if session.Shop == "" {
		return &errors.ErrValidation{Message: "session has no shop"}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	var shopID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO shops (id, shop_domain, is_active, created_at, updated_at)
		VALUES ($1, $2, false, $3, $3)
		ON CONFLICT (shop_domain) DO UPDATE SET updated_at = shops.updated_at
		RETURNING id
	`, uuid.New(), session.Shop, now).Scan(&shopID)
	if err != nil {
		r.logger.Error("Failed to resolve shop for session", zap.String("shop", session.Shop), zap.Error(err))
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, shop_id, shop, state, scope, access_token, is_online, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			scope = EXCLUDED.scope,
			access_token = EXCLUDED.access_token,
			is_online = EXCLUDED.is_online,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
	`,
		session.ID,
		shopID,
		session.Shop,
		session.State,
		session.Scope,
		session.AccessToken,
		session.IsOnline,
		session.Expires,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to store session", zap.String("session_id", session.ID), zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	session.UpdatedAt = now
	return nil
}

func (r *sessionRepository) Load(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT id, shop, state, scope, access_token, is_online, expires_at, updated_at
		FROM sessions
		WHERE id = $1
	`

	var s domain.Session
	var expires sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.Shop,
		&s.State,
		&s.Scope,
		&s.AccessToken,
		&s.IsOnline,
		&expires,
		&s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "session", ID: id}
	}
	if err != nil {
		r.logger.Error("Failed to load session", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}
	if expires.Valid {
		s.Expires = &expires.Time
	}

	return &s, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete session", zap.String("session_id", id), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "session", ID: id}
	}
	return nil
}

func (r *sessionRepository) DeleteByShop(ctx context.Context, shopDomain string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE shop = $1`, shopDomain); err != nil {
		r.logger.Error("Failed to delete shop sessions", zap.String("shop", shopDomain), zap.Error(err))
		return err
	}
	return nil
}
