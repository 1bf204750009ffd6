// Package cache wraps repositories with an in-process TTL cache.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/internal/repository"
)

// Config holds ristretto sizing. Cost is counted per session.
type Config struct {
	MaxCost     int64
	NumCounters int64
	BufferItems int64
	TTL         time.Duration
}

// DefaultConfig returns a configuration sized for a few thousand shops
func DefaultConfig(ttl time.Duration) Config {
	return Config{
		MaxCost:     10_000,
		NumCounters: 100_000,
		BufferItems: 64,
		TTL:         ttl,
	}
}

// SessionRepository caches session loads in front of another SessionRepository
type SessionRepository struct {
	next   repository.SessionRepository
	store  *ristretto.Cache
	group  singleflight.Group
	ttl    time.Duration
	logger *zap.Logger
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates the caching decorator
func NewSessionRepository(next repository.SessionRepository, cfg Config, logger *zap.Logger) (*SessionRepository, error) {
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxCost,
		BufferItems:        cfg.BufferItems,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}

	return &SessionRepository{
		next:   next,
		store:  store,
		ttl:    cfg.TTL,
		logger: logger,
	}, nil
}

func (r *SessionRepository) Load(ctx context.Context, id string) (*domain.Session, error) {
	if cached, ok := r.store.Get(id); ok {
		return copySession(cached.(*domain.Session)), nil
	}

	value, err, shared := r.group.Do(id, func() (interface{}, error) {
		if cached, ok := r.store.Get(id); ok {
			return cached, nil
		}
		session, err := r.next.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		r.store.SetWithTTL(id, session, 1, r.ttl)
		return session, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.logger.Debug("Session load shared", zap.String("session_id", id))
	}

	return copySession(value.(*domain.Session)), nil
}

func (r *SessionRepository) Store(ctx context.Context, session *domain.Session) error {
	if err := r.next.Store(ctx, session); err != nil {
		return err
	}
	r.store.Del(session.ID)
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.store.Del(id)
	return r.next.Delete(ctx, id)
}

// DeleteByShop drops the whole cache since keys cannot be listed by shop
func (r *SessionRepository) DeleteByShop(ctx context.Context, shopDomain string) error {
	err := r.next.DeleteByShop(ctx, shopDomain)
	r.store.Clear()
	return err
}

// Wait blocks until buffered cache writes are applied
func (r *SessionRepository) Wait() {
	r.store.Wait()
}

// Close releases the cache goroutines
func (r *SessionRepository) Close() {
	r.store.Close()
}

func copySession(s *domain.Session) *domain.Session {
	cp := *s
	return &cp
}
