package shopify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/config"
)

// TopicAppUninstalled is the webhook topic registered after install
const TopicAppUninstalled = "APP_UNINSTALLED"

var shopDomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]*\.myshopify\.com$`)

// IsValidShopDomain reports whether shop looks like <name>.myshopify.com
func IsValidShopDomain(shop string) bool {
	return shopDomainPattern.MatchString(shop)
}

// VerifyQueryHMAC checks the hmac parameter Shopify adds to OAuth redirects.
// It is computed over the sorted query string excluding hmac and signature.
func VerifyQueryHMAC(q url.Values, secret string) bool {
	if secret == "" {
		return false
	}
	got, err := hex.DecodeString(q.Get("hmac"))
	if err != nil || len(got) == 0 {
		return false
	}
	return hmac.Equal(queryHMAC(q, secret), got)
}

// SignQuery returns the hex hmac Shopify would attach to q
func SignQuery(q url.Values, secret string) string {
	return hex.EncodeToString(queryHMAC(q, secret))
}

func queryHMAC(q url.Values, secret string) []byte {
	keys := make([]string, 0, len(q))
	for k := range q {
		if k == "hmac" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		for _, v := range q[k] {
			parts = append(parts, k+"="+v)
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, "&")))
	return mac.Sum(nil)
}

// VerifyWebhookHMAC checks the base64 X-Shopify-Hmac-Sha256 header against the raw body
func VerifyWebhookHMAC(body []byte, header, secret string) bool {
	header = strings.TrimSpace(header)
	if secret == "" || header == "" {
		return false
	}
	got, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return false
	}
	return hmac.Equal(SignWebhook(body, secret), got)
}

// SignWebhook returns the raw HMAC-SHA256 of body
func SignWebhook(body []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}

// AccessToken is the result of the OAuth code exchange
type AccessToken struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// OAuthClient performs the authorization code grant against a shop
type OAuthClient struct {
	cfg        config.ShopifyConfig
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOAuthClient creates an OAuthClient
func NewOAuthClient(cfg config.ShopifyConfig, logger *zap.Logger, opts ...Option) *OAuthClient {
	o := buildOptions(opts)
	return &OAuthClient{
		cfg:        cfg,
		baseURL:    o.baseURL,
		httpClient: o.httpClient,
		logger:     logger,
	}
}

func (c *OAuthClient) origin(shop string) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return "https://" + shop
}

// AuthorizeURL returns the shop's consent screen URL. The shop itself is
// always the host since the merchant's browser follows it.
func (c *OAuthClient) AuthorizeURL(shop, redirectURI, state string) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.APIKey)
	q.Set("scope", strings.Join(c.cfg.Scopes, ","))
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	return "https://" + shop + "/admin/oauth/authorize?" + q.Encode()
}

// ExchangeCodeForToken trades an authorization code for an offline access token
func (c *OAuthClient) ExchangeCodeForToken(ctx context.Context, shop, code string) (*AccessToken, error) {
	b, err := json.Marshal(map[string]string{
		"client_id":     c.cfg.APIKey,
		"client_secret": c.cfg.APISecret,
		"code":          code,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.origin(shop)+"/admin/oauth/access_token", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out AccessToken
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("no access token returned")
	}

	c.logger.Info("OAuth token exchanged", zap.String("shop", shop), zap.String("scope", out.Scope))
	return &out, nil
}
