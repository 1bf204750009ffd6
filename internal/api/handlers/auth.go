package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/config"
	"github.com/FilipposDe/shopify-fields-app/internal/domain"
)

const (
	stateCookieName   = "shopify_oauth_state"
	stateCookieMaxAge = 600
)

// AuthService runs the install flow and answers installation state
type AuthService interface {
	BeginAuth(shop string) (string, string, error)
	CompleteAuth(ctx context.Context, query url.Values, expectedState string) (string, error)
	IsInstalled(ctx context.Context, shop string) (bool, error)
	OfflineSession(ctx context.Context, shop string) (*domain.Session, error)
	Uninstall(ctx context.Context, shop string) error
}

// HandleAuth handles GET /auth?shop=
func HandleAuth(cfg *config.Config, auth AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		redirectURL, state, err := auth.BeginAuth(c.Query("shop"))
		if err != nil {
			respondError(c, err, logger)
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(stateCookieName, state, stateCookieMaxAge, "/auth", "", strings.HasPrefix(cfg.Host, "https://"), true)
		c.Redirect(http.StatusFound, redirectURL)
	}
}

// HandleAuthCallback handles GET /auth/callback
func HandleAuthCallback(cfg *config.Config, auth AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, _ := c.Cookie(stateCookieName)

		shop, err := auth.CompleteAuth(c.Request.Context(), c.Request.URL.Query(), state)
		if err != nil {
			respondError(c, err, logger)
			return
		}

		c.SetCookie(stateCookieName, "", -1, "/auth", "", strings.HasPrefix(cfg.Host, "https://"), true)
		c.Redirect(http.StatusFound, "/?shop="+url.QueryEscape(shop))
	}
}

// HandleAppHome handles GET /?shop=. Shops without an active install are sent through OAuth.
func HandleAppHome(auth AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := c.Query("shop")
		if shop == "" {
			c.JSON(http.StatusOK, gin.H{
				"service": "Shopify custom fields",
				"endpoints": []string{
					"GET /health",
					"GET /auth?shop=",
					"POST /webhooks",
					"POST /graphql",
					"GET /api/fields",
					"POST /api/field",
					"GET /api/field/:id",
					"PUT /api/field/:id",
					"GET /api/products",
					"GET /api/products/:id/metafields",
					"PUT /api/products/:id/metafields",
				},
			})
			return
		}

		installed, err := auth.IsInstalled(c.Request.Context(), shop)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		if !installed {
			c.Redirect(http.StatusFound, "/auth?shop="+url.QueryEscape(shop))
			return
		}

		c.JSON(http.StatusOK, gin.H{"shop": shop, "installed": true})
	}
}
