package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/api/middleware"
	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/internal/service"
)

// FieldService is the field store used by the field handlers
type FieldService interface {
	Create(ctx context.Context, shopDomain string, in service.FieldInput) (*domain.Field, error)
	List(ctx context.Context, shopDomain string) ([]*domain.Field, error)
	Get(ctx context.Context, shopDomain, id string) (*domain.Field, error)
	Update(ctx context.Context, shopDomain, id string, in service.FieldInput) (*domain.Field, bool, error)
}

// HandleCreateField handles POST /api/field
func HandleCreateField(fields FieldService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req service.FieldInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		field, err := fields.Create(c.Request.Context(), session.Shop, req)
		if err != nil {
			respondError(c, err, logger)
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": field.ID})
	}
}

// HandleListFields handles GET /api/fields
func HandleListFields(fields FieldService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		list, err := fields.List(c.Request.Context(), session.Shop)
		if err != nil {
			respondError(c, err, logger)
			return
		}

		c.JSON(http.StatusOK, list)
	}
}

// HandleGetField handles GET /api/field/:id
func HandleGetField(fields FieldService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		field, err := fields.Get(c.Request.Context(), session.Shop, c.Param("id"))
		if err != nil {
			respondError(c, err, logger)
			return
		}

		c.JSON(http.StatusOK, field)
	}
}

// HandleUpdateField handles PUT /api/field/:id
func HandleUpdateField(fields FieldService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req service.FieldInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		field, changed, err := fields.Update(c.Request.Context(), session.Shop, c.Param("id"), req)
		if err != nil {
			respondError(c, err, logger)
			return
		}

		c.JSON(http.StatusOK, gin.H{"field": field, "changed": changed})
	}
}
