package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Shop:    NewShopRepository(db, logger),
		Field:   NewFieldRepository(db, logger),
		Session: NewSessionRepository(db, logger),
	}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
