package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/config"
	"github.com/FilipposDe/shopify-fields-app/internal/shopify"
)

const topicAppUninstalled = "app/uninstalled"

// HandleWebhook handles POST /webhooks.
// Processing errors are logged and answered 200 so Shopify does not keep retrying.
func HandleWebhook(cfg *config.Config, auth AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Shopify HMAC is computed over raw bytes
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}

		if !shopify.VerifyWebhookHMAC(body, c.GetHeader("X-Shopify-Hmac-Sha256"), cfg.Shopify.APISecret) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
			return
		}

		topic := c.GetHeader("X-Shopify-Topic")
		shop := shopify.NormalizeShopDomain(c.GetHeader("X-Shopify-Shop-Domain"))
		if shop == "" {
			var payload struct {
				Domain string `json:"myshopify_domain"`
			}
			if err := json.Unmarshal(body, &payload); err == nil {
				shop = shopify.NormalizeShopDomain(payload.Domain)
			}
		}

		switch topic {
		case topicAppUninstalled:
			if err := auth.Uninstall(c.Request.Context(), shop); err != nil {
				logger.Error("Webhook: failed to uninstall shop", zap.String("shop", shop), zap.Error(err))
				c.JSON(http.StatusOK, gin.H{"ok": true, "status": "error"})
				return
			}
		default:
			logger.Info("Webhook: ignoring topic", zap.String("topic", topic), zap.String("shop", shop))
			c.JSON(http.StatusOK, gin.H{"ok": true, "status": "ignored"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "status": "processed", "topic": topic})
	}
}
