package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/internal/repository"
	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

const (
	minFieldNameLength        = 3
	maxFieldNameLength        = 30
	maxFieldDescriptionLength = 300
)

type fieldService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewFieldService creates a new field service
func NewFieldService(repos *repository.Repositories, logger *zap.Logger) *fieldService {
	return &fieldService{
		repos:  repos,
		logger: logger,
	}
}

// resolveShop loads the shop behind a verified session. Unknown shops are unauthorized.
func resolveShop(ctx context.Context, repos *repository.Repositories, shopDomain string) (*domain.Shop, error) {
	shop, err := repos.Shop.GetByDomain(ctx, shopDomain)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return nil, &errors.ErrUnauthorized{Message: "shop not found"}
		}
		return nil, err
	}
	return shop, nil
}

// normalizeFieldInput trims and validates a field definition
func normalizeFieldInput(in FieldInput) (FieldInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Type = domain.FieldType(strings.ToUpper(strings.TrimSpace(string(in.Type))))

	problems := map[string]string{}
	if n := utf8.RuneCountInString(in.Name); n < minFieldNameLength || n > maxFieldNameLength {
		problems["name"] = "Name must be between 3 and 30 characters"
	}
	if utf8.RuneCountInString(in.Description) > maxFieldDescriptionLength {
		problems["description"] = "Description must be at most 300 characters"
	}
	if !in.Type.IsValid() {
		problems["type"] = "Type must be TEXT or NUMBER"
	}
	if len(problems) > 0 {
		return in, &errors.ErrValidation{Message: "invalid field", Fields: problems}
	}
	return in, nil
}

// Create validates and stores a new field for the shop
func (s *fieldService) Create(ctx context.Context, shopDomain string, in FieldInput) (*domain.Field, error) {
	in, err := normalizeFieldInput(in)
	if err != nil {
		return nil, err
	}
	shop, err := resolveShop(ctx, s.repos, shopDomain)
	if err != nil {
		return nil, err
	}

	field := &domain.Field{
		Name:        in.Name,
		Description: in.Description,
		Type:        in.Type,
	}
	if err := s.repos.Field.Create(ctx, shop.ID, field); err != nil {
		if _, ok := err.(*errors.ErrConflict); !ok {
			s.logger.Error("Failed to create field", zap.String("shop", shopDomain), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("Field created",
		zap.String("shop", shopDomain),
		zap.String("field_id", field.ID),
		zap.String("name", field.Name),
	)
	return field, nil
}

// List returns the shop's fields in creation order
func (s *fieldService) List(ctx context.Context, shopDomain string) ([]*domain.Field, error) {
	shop, err := resolveShop(ctx, s.repos, shopDomain)
	if err != nil {
		return nil, err
	}
	return s.repos.Field.ListByShop(ctx, shop.ID)
}

// Get returns one of the shop's fields
func (s *fieldService) Get(ctx context.Context, shopDomain, id string) (*domain.Field, error) {
	shop, err := resolveShop(ctx, s.repos, shopDomain)
	if err != nil {
		return nil, err
	}
	return s.repos.Field.GetByID(ctx, shop.ID, id)
}

// Update replaces a field's name, type and description. It skips the write and
// reports changed=false when the values are the same.
func (s *fieldService) Update(ctx context.Context, shopDomain, id string, in FieldInput) (*domain.Field, bool, error) {
	in, err := normalizeFieldInput(in)
	if err != nil {
		return nil, false, err
	}
	shop, err := resolveShop(ctx, s.repos, shopDomain)
	if err != nil {
		return nil, false, err
	}

	field, err := s.repos.Field.GetByID(ctx, shop.ID, id)
	if err != nil {
		return nil, false, err
	}
	if field.Name == in.Name && field.Type == in.Type && field.Description == in.Description {
		return field, false, nil
	}

	field.Name = in.Name
	field.Type = in.Type
	field.Description = in.Description
	if err := s.repos.Field.Update(ctx, shop.ID, field); err != nil {
		return nil, false, err
	}

	s.logger.Info("Field updated", zap.String("shop", shopDomain), zap.String("field_id", field.ID))
	return field, true, nil
}
