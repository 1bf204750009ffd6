package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/api/handlers"
	"github.com/FilipposDe/shopify-fields-app/internal/api/middleware"
	"github.com/FilipposDe/shopify-fields-app/internal/config"
	"github.com/FilipposDe/shopify-fields-app/internal/metrics"
	"github.com/FilipposDe/shopify-fields-app/internal/repository"
	"github.com/FilipposDe/shopify-fields-app/internal/service"
	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

// Dependencies are the collaborators the router wires into services
type Dependencies struct {
	Repos   *repository.Repositories
	Admin   service.AdminAPIFactory
	OAuth   service.TokenExchanger
	Metrics *metrics.Metrics
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Dependencies, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	fields := service.NewFieldService(deps.Repos, logger)
	products := service.NewProductService(deps.Repos, deps.Admin, logger)
	sync := service.NewSyncService(deps.Repos, deps.Admin, deps.Metrics, logger)
	auth := service.NewAuthService(cfg, deps.Repos, deps.OAuth, deps.Admin, logger)

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))
	router.Use(deps.Metrics.Middleware())

	router.GET("/", handlers.HandleAppHome(auth, logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// OAuth install flow
	router.GET("/auth", handlers.HandleAuth(cfg, auth, logger))
	router.GET("/auth/callback", handlers.HandleAuthCallback(cfg, auth, logger))

	// Shopify webhook: app/uninstalled deactivates the shop
	router.POST("/webhooks", handlers.HandleWebhook(cfg, auth, logger))

	verified := middleware.SessionTokenMiddleware(cfg, auth, logger)

	router.POST("/graphql", verified, handlers.HandleGraphQLProxy(deps.Admin, logger))

	apiRoutes := router.Group("/api")
	apiRoutes.Use(verified)
	{
		apiRoutes.POST("/field", handlers.HandleCreateField(fields, logger))
		apiRoutes.GET("/fields", handlers.HandleListFields(fields, logger))
		apiRoutes.GET("/field/:id", handlers.HandleGetField(fields, logger))
		apiRoutes.PUT("/field/:id", handlers.HandleUpdateField(fields, logger))

		apiRoutes.GET("/products", handlers.HandleListProducts(products, logger))
		apiRoutes.GET("/products/:id/metafields", handlers.HandleGetProductMetafields(products, logger))
		apiRoutes.PUT("/products/:id/metafields", handlers.HandleSubmitProductMetafields(sync, logger))
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.String("error", fmt.Sprintf("%v", recovered)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errors.GenericMessage})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
