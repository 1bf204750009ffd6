package service

import (
	"github.com/FilipposDe/shopify-fields-app/internal/domain"
)

// FieldInput is the body of field create and update requests
type FieldInput struct {
	Name        string           `json:"name" binding:"required"`
	Type        domain.FieldType `json:"type" binding:"required"`
	Description string           `json:"description"`
}

// SubmitRequest is the body of a product metafield submission
type SubmitRequest struct {
	Values domain.FormValues `json:"values" binding:"required"`
}

// ProductEditor is what the product form needs to render
type ProductEditor struct {
	ProductID string            `json:"productId"`
	Title     string            `json:"title"`
	Fields    []*domain.Field   `json:"fields"`
	Values    domain.FormValues `json:"values"`
}

// SyncResult reports a finished submission
type SyncResult struct {
	State   domain.SyncState  `json:"state"`
	Values  domain.FormValues `json:"values"`
	Created int               `json:"created"`
	Updated int               `json:"updated"`
	Deleted int               `json:"deleted"`
}
