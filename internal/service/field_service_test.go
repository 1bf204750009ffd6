package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

func TestFieldService_CreateTrimsAndValidates(t *testing.T) {
	fx := newFixture(t)
	svc := NewFieldService(fx.repos, nopLogger)
	ctx := context.Background()

	field, err := svc.Create(ctx, testShop, FieldInput{Name: "  Color  ", Type: "text", Description: " main color "})
	require.NoError(t, err)
	assert.Equal(t, "Color", field.Name)
	assert.Equal(t, domain.FieldTypeText, field.Type)
	assert.Equal(t, "main color", field.Description)
	assert.NotEmpty(t, field.ID)

	cases := map[string]FieldInput{
		"name":        {Name: "ab", Type: domain.FieldTypeText},
		"type":        {Name: "Weight", Type: "DATE"},
		"description": {Name: "Weight", Type: domain.FieldTypeNumber, Description: strings.Repeat("x", 301)},
	}
	for key, in := range cases {
		_, err := svc.Create(ctx, testShop, in)
		var validation *errors.ErrValidation
		require.ErrorAs(t, err, &validation, key)
		assert.Contains(t, validation.Fields, key)
	}

	_, err = svc.Create(ctx, testShop, FieldInput{Name: strings.Repeat("n", 31), Type: domain.FieldTypeText})
	assert.Error(t, err)
	_, err = svc.Create(ctx, testShop, FieldInput{Name: strings.Repeat("n", 30), Type: domain.FieldTypeText})
	assert.NoError(t, err)
}

func TestFieldService_DuplicateName(t *testing.T) {
	fx := newFixture(t)
	svc := NewFieldService(fx.repos, nopLogger)
	ctx := context.Background()

	_, err := svc.Create(ctx, testShop, FieldInput{Name: "Color", Type: domain.FieldTypeText})
	require.NoError(t, err)

	_, err = svc.Create(ctx, testShop, FieldInput{Name: "Color", Type: domain.FieldTypeNumber})
	var conflict *errors.ErrConflict
	assert.ErrorAs(t, err, &conflict)
}

func TestFieldService_UnknownShopIsUnauthorized(t *testing.T) {
	fx := newFixture(t)
	svc := NewFieldService(fx.repos, nopLogger)

	_, err := svc.List(context.Background(), "other.myshopify.com")
	var unauthorized *errors.ErrUnauthorized
	assert.ErrorAs(t, err, &unauthorized)
}

func TestFieldService_UpdateNoOpWhenUnchanged(t *testing.T) {
	fx := newFixture(t)
	svc := NewFieldService(fx.repos, nopLogger)
	ctx := context.Background()

	created, err := svc.Create(ctx, testShop, FieldInput{Name: "Color", Type: domain.FieldTypeText, Description: "d"})
	require.NoError(t, err)

	same, changed, err := svc.Update(ctx, testShop, created.ID, FieldInput{Name: "Color ", Type: domain.FieldTypeText, Description: "d"})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, created.UpdatedAt, same.UpdatedAt)

	updated, changed, err := svc.Update(ctx, testShop, created.ID, FieldInput{Name: "Colour", Type: domain.FieldTypeText})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Colour", updated.Name)

	got, err := svc.Get(ctx, testShop, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Colour", got.Name)
	assert.Empty(t, got.Description)
}

func TestFieldService_UpdateMissingAndRenameConflict(t *testing.T) {
	fx := newFixture(t)
	svc := NewFieldService(fx.repos, nopLogger)
	ctx := context.Background()

	_, err := svc.Create(ctx, testShop, FieldInput{Name: "Color", Type: domain.FieldTypeText})
	require.NoError(t, err)
	size, err := svc.Create(ctx, testShop, FieldInput{Name: "Size", Type: domain.FieldTypeNumber})
	require.NoError(t, err)

	_, _, err = svc.Update(ctx, testShop, "missing", FieldInput{Name: "Other", Type: domain.FieldTypeText})
	var notFound *errors.ErrNotFound
	assert.ErrorAs(t, err, &notFound)

	_, _, err = svc.Update(ctx, testShop, size.ID, FieldInput{Name: "Color", Type: domain.FieldTypeNumber})
	var conflict *errors.ErrConflict
	assert.ErrorAs(t, err, &conflict)

	fields, err := svc.List(ctx, testShop)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "Size", fields[1].Name)
}
