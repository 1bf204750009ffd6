package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/api/middleware"
	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/internal/service"
)

// ProductService lists products and loads the field editor
type ProductService interface {
	List(ctx context.Context, session *domain.Session, first int, after string) (*domain.ProductPage, error)
	Search(ctx context.Context, session *domain.Session, query string) (*domain.ProductPage, error)
	Editor(ctx context.Context, session *domain.Session, productID string) (*service.ProductEditor, error)
}

// SyncService applies a metafield submission
type SyncService interface {
	Submit(ctx context.Context, session *domain.Session, productID string, values domain.FormValues) (*service.SyncResult, error)
}

// HandleListProducts handles GET /api/products?first=&after= and GET /api/products?query=
func HandleListProducts(products ProductService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var (
			page *domain.ProductPage
			err  error
		)
		if query, hasQuery := c.GetQuery("query"); hasQuery {
			page, err = products.Search(c.Request.Context(), session, query)
		} else {
			first := 0
			if raw := c.Query("first"); raw != "" {
				first, err = strconv.Atoi(raw)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "first must be a number"})
					return
				}
			}
			page, err = products.List(c.Request.Context(), session, first, c.Query("after"))
		}
		if err != nil {
			respondError(c, err, logger)
			return
		}

		c.JSON(http.StatusOK, page)
	}
}

// HandleGetProductMetafields handles GET /api/products/:id/metafields
func HandleGetProductMetafields(products ProductService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		editor, err := products.Editor(c.Request.Context(), session, c.Param("id"))
		if err != nil {
			respondError(c, err, logger)
			return
		}

		c.JSON(http.StatusOK, editor)
	}
}

// HandleSubmitProductMetafields handles PUT /api/products/:id/metafields
func HandleSubmitProductMetafields(sync SyncService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req service.SubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		result, err := sync.Submit(c.Request.Context(), session, c.Param("id"), req.Values)
		if err != nil {
			respondError(c, err, logger)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
