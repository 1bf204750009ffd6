// Package memory keeps shops, fields and sessions in process memory.
// It backs STORE_DRIVER=memory and the service and handler tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/internal/repository"
	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

type store struct {
	mu       sync.RWMutex
	shops    map[string]*domain.Shop    // by domain
	fields   map[string][]*domain.Field // by shop id, in creation order
	sessions map[string]*domain.Session
}

// NewRepositories creates repositories sharing one in-memory store
func NewRepositories() *repository.Repositories {
	s := &store{
		shops:    make(map[string]*domain.Shop),
		fields:   make(map[string][]*domain.Field),
		sessions: make(map[string]*domain.Session),
	}
	return &repository.Repositories{
		Shop:    &shopRepository{s},
		Field:   &fieldRepository{s},
		Session: &sessionRepository{s},
	}
}

type shopRepository struct{ s *store }

func (r *shopRepository) GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	shop, ok := r.s.shops[shopDomain]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "shop", ID: shopDomain}
	}
	cp := *shop
	return &cp, nil
}

func (r *shopRepository) Upsert(ctx context.Context, shop *domain.Shop) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	*shop = *r.s.upsertShop(shop.ShopDomain, shop.IsActive)
	return nil
}

func (r *shopRepository) SetActive(ctx context.Context, shopDomain string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	shop, ok := r.s.shops[shopDomain]
	if !ok {
		return &errors.ErrNotFound{Resource: "shop", ID: shopDomain}
	}
	shop.IsActive = active
	shop.UpdatedAt = time.Now()
	return nil
}

// upsertShop must be called with the write lock held
func (s *store) upsertShop(shopDomain string, active bool) *domain.Shop {
	now := time.Now()
	shop, ok := s.shops[shopDomain]
	if !ok {
		shop = &domain.Shop{
			ID:         uuid.NewString(),
			ShopDomain: shopDomain,
			IsActive:   active,
			CreatedAt:  now,
		}
		s.shops[shopDomain] = shop
	}
	shop.UpdatedAt = now
	cp := *shop
	return &cp
}

func (s *store) hasShopID(shopID string) bool {
	for _, shop := range s.shops {
		if shop.ID == shopID {
			return true
		}
	}
	return false
}

type fieldRepository struct{ s *store }

func (r *fieldRepository) ListByShop(ctx context.Context, shopID string) ([]*domain.Field, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if !r.s.hasShopID(shopID) {
		return nil, &errors.ErrNotFound{Resource: "shop", ID: shopID}
	}
	fields := make([]*domain.Field, 0, len(r.s.fields[shopID]))
	for _, f := range r.s.fields[shopID] {
		cp := *f
		fields = append(fields, &cp)
	}
	return fields, nil
}

func (r *fieldRepository) GetByID(ctx context.Context, shopID, id string) (*domain.Field, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, f := range r.s.fields[shopID] {
		if f.ID == id {
			cp := *f
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "field", ID: id}
}

func (r *fieldRepository) Create(ctx context.Context, shopID string, field *domain.Field) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.hasShopID(shopID) {
		return &errors.ErrNotFound{Resource: "shop", ID: shopID}
	}
	for _, f := range r.s.fields[shopID] {
		if f.Name == field.Name {
			return &errors.ErrConflict{Message: fmt.Sprintf("Field with name: %q already exists", field.Name)}
		}
	}

	now := time.Now()
	field.ID = uuid.NewString()
	field.CreatedAt = now
	field.UpdatedAt = now
	cp := *field
	r.s.fields[shopID] = append(r.s.fields[shopID], &cp)
	return nil
}

func (r *fieldRepository) Update(ctx context.Context, shopID string, field *domain.Field) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var target *domain.Field
	for _, f := range r.s.fields[shopID] {
		if f.ID == field.ID {
			target = f
		} else if f.Name == field.Name {
			return &errors.ErrConflict{Message: fmt.Sprintf("Field with name: %q already exists", field.Name)}
		}
	}
	if target == nil {
		return &errors.ErrNotFound{Resource: "field", ID: field.ID}
	}

	field.CreatedAt = target.CreatedAt
	field.UpdatedAt = time.Now()
	*target = *field
	return nil
}

type sessionRepository struct{ s *store }

func (r *sessionRepository) Store(ctx context.Context, session *domain.Session) error {
	if session.Shop == "" {
		return &errors.ErrValidation{Message: "session has no shop"}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.shops[session.Shop]; !ok {
		r.s.upsertShop(session.Shop, false)
	}
	session.UpdatedAt = time.Now()
	cp := *session
	r.s.sessions[session.ID] = &cp
	return nil
}

func (r *sessionRepository) Load(ctx context.Context, id string) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	session, ok := r.s.sessions[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "session", ID: id}
	}
	cp := *session
	return &cp, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[id]; !ok {
		return &errors.ErrNotFound{Resource: "session", ID: id}
	}
	delete(r.s.sessions, id)
	return nil
}

func (r *sessionRepository) DeleteByShop(ctx context.Context, shopDomain string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, session := range r.s.sessions {
		if session.Shop == shopDomain {
			delete(r.s.sessions, id)
		}
	}
	return nil
}
