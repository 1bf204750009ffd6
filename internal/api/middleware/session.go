package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/config"
	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/internal/shopify"
)

const (
	SessionContextKey = "session"

	// InactiveJWTMessage tells embedded clients the token is not valid yet and the request can be retried
	InactiveJWTMessage = "Inactive JWT"

	ReauthorizeHeader    = "X-Shopify-API-Request-Failure-Reauthorize"
	ReauthorizeURLHeader = "X-Shopify-API-Request-Failure-Reauthorize-Url"
)

// SessionLoader resolves the offline session of an installed shop
type SessionLoader interface {
	OfflineSession(ctx context.Context, shop string) (*domain.Session, error)
}

// SessionClaims are the claims of an App Bridge session token
type SessionClaims struct {
	Dest string `json:"dest"`
	jwt.RegisteredClaims
}

// ParseSessionToken verifies an HS256 session token signed with the app secret,
// issued for the app's API key, and returns the shop it was issued for
func ParseSessionToken(raw string, cfg config.ShopifyConfig) (string, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.APISecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(cfg.APIKey),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}

	dest, err := url.Parse(claims.Dest)
	if err != nil || dest.Scheme != "https" {
		return "", jwt.ErrTokenInvalidClaims
	}
	shop := shopify.NormalizeShopDomain(dest.Host)
	if !shopify.IsValidShopDomain(shop) {
		return "", jwt.ErrTokenInvalidClaims
	}
	return shop, nil
}

// SessionTokenMiddleware authenticates embedded app requests using the
// Authorization: Bearer <session token> header and loads the shop's offline session
func SessionTokenMiddleware(cfg *config.Config, sessions SessionLoader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if authHeader == "" || raw == "" || raw == authHeader {
			reauthorize(c, cfg, c.Query("shop"))
			return
		}

		shop, err := ParseSessionToken(raw, cfg.Shopify)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenNotValidYet) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": InactiveJWTMessage})
				return
			}
			logger.Warn("Invalid session token", zap.Error(err))
			reauthorize(c, cfg, c.Query("shop"))
			return
		}

		session, err := sessions.OfflineSession(c.Request.Context(), shop)
		if err != nil {
			logger.Info("No usable session for shop", zap.String("shop", shop), zap.Error(err))
			reauthorize(c, cfg, shop)
			return
		}

		c.Set(SessionContextKey, session)
		c.Next()
	}
}

// reauthorize tells App Bridge to restart OAuth
func reauthorize(c *gin.Context, cfg *config.Config, shop string) {
	authURL := cfg.Host + "/auth"
	if shop = shopify.NormalizeShopDomain(shop); shopify.IsValidShopDomain(shop) {
		authURL += "?shop=" + url.QueryEscape(shop)
	}
	c.Header(ReauthorizeHeader, "1")
	c.Header(ReauthorizeURLHeader, authURL)
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "reauthorization required"})
}

// GetSessionFromContext retrieves the shop session from the Gin context
func GetSessionFromContext(c *gin.Context) (*domain.Session, bool) {
	session, exists := c.Get(SessionContextKey)
	if !exists {
		return nil, false
	}

	s, ok := session.(*domain.Session)
	return s, ok
}
