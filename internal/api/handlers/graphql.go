package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/api/middleware"
	"github.com/FilipposDe/shopify-fields-app/internal/service"
	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

// HandleGraphQLProxy handles POST /graphql by forwarding the body to the
// shop's Admin API with the stored access token
func HandleGraphQLProxy(admin service.AdminAPIFactory, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}

		status, respBody, err := admin(session).Forward(c.Request.Context(), body)
		if err != nil {
			respondError(c, &errors.ErrRemote{Op: "graphql proxy", Err: err}, logger)
			return
		}

		c.Data(status, "application/json", respBody)
	}
}
