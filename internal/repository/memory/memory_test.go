package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

func TestFieldRepository_CreateDuplicateName(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	shop := &domain.Shop{ShopDomain: "a.myshopify.com"}
	require.NoError(t, repos.Shop.Upsert(ctx, shop))

	first := &domain.Field{Name: "Color", Type: domain.FieldTypeText}
	require.NoError(t, repos.Field.Create(ctx, shop.ID, first))
	assert.NotEmpty(t, first.ID)

	err := repos.Field.Create(ctx, shop.ID, &domain.Field{Name: "Color", Type: domain.FieldTypeNumber})
	var conflict *errors.ErrConflict
	assert.ErrorAs(t, err, &conflict)

	fields, err := repos.Field.ListByShop(ctx, shop.ID)
	require.NoError(t, err)
	assert.Len(t, fields, 1)
}

func TestFieldRepository_ScopedToShop(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	a := &domain.Shop{ShopDomain: "a.myshopify.com"}
	b := &domain.Shop{ShopDomain: "b.myshopify.com"}
	require.NoError(t, repos.Shop.Upsert(ctx, a))
	require.NoError(t, repos.Shop.Upsert(ctx, b))

	f := &domain.Field{Name: "Color", Type: domain.FieldTypeText}
	require.NoError(t, repos.Field.Create(ctx, a.ID, f))
	require.NoError(t, repos.Field.Create(ctx, b.ID, &domain.Field{Name: "Color", Type: domain.FieldTypeText}))

	_, err := repos.Field.GetByID(ctx, b.ID, f.ID)
	var notFound *errors.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestFieldRepository_UpdateRenameConflict(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	shop := &domain.Shop{ShopDomain: "a.myshopify.com"}
	require.NoError(t, repos.Shop.Upsert(ctx, shop))
	color := &domain.Field{Name: "Color", Type: domain.FieldTypeText}
	size := &domain.Field{Name: "Size", Type: domain.FieldTypeNumber}
	require.NoError(t, repos.Field.Create(ctx, shop.ID, color))
	require.NoError(t, repos.Field.Create(ctx, shop.ID, size))

	err := repos.Field.Update(ctx, shop.ID, &domain.Field{ID: size.ID, Name: "Color", Type: domain.FieldTypeNumber})
	var conflict *errors.ErrConflict
	assert.ErrorAs(t, err, &conflict)

	err = repos.Field.Update(ctx, shop.ID, &domain.Field{ID: "missing", Name: "Other", Type: domain.FieldTypeText})
	var notFound *errors.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestSessionRepository_StoreCreatesShop(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	err := repos.Session.Store(ctx, &domain.Session{ID: "offline_a.myshopify.com"})
	var validation *errors.ErrValidation
	assert.ErrorAs(t, err, &validation)

	s := &domain.Session{ID: "offline_a.myshopify.com", Shop: "a.myshopify.com", AccessToken: "tok"}
	require.NoError(t, repos.Session.Store(ctx, s))

	shop, err := repos.Shop.GetByDomain(ctx, "a.myshopify.com")
	require.NoError(t, err)
	assert.False(t, shop.IsActive)

	loaded, err := repos.Session.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok", loaded.AccessToken)

	require.NoError(t, repos.Session.DeleteByShop(ctx, "a.myshopify.com"))
	_, err = repos.Session.Load(ctx, s.ID)
	var notFound *errors.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}
