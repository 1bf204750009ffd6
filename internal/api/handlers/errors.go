package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

// respondError maps service errors to HTTP responses. Remote and unexpected
// failures are logged and answered with the generic message.
func respondError(c *gin.Context, err error, logger *zap.Logger) {
	switch e := err.(type) {
	case *errors.ErrValidation:
		body := gin.H{"error": e.Error()}
		if len(e.Fields) > 0 {
			body["fields"] = e.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case *errors.ErrConflict:
		c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
	case *errors.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": e.Error()})
	case *errors.ErrUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": e.Error()})
	case *errors.ErrMetafieldLimit:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": e.Error()})
	case *errors.ErrRemote:
		logger.Error("Shopify request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("op", e.Op),
			zap.Error(e.Err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": errors.GenericMessage})
	default:
		logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errors.GenericMessage})
	}
}
