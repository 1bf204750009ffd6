package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/config"
)

type Client struct {
	shopDomain  string
	accessToken string
	apiVersion  string
	baseURL     string
	httpClient  *http.Client
	retry       RetryPolicy
	logger      *zap.Logger
}

// Option customizes a Client or OAuthClient
type Option func(*options)

type options struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryPolicy
}

// WithBaseURL replaces https://<shop> as the API origin. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) { o.httpClient = httpClient }
}

// WithRetryPolicy sets the policy used for queries. Mutations are never retried.
func WithRetryPolicy(retry RetryPolicy) Option {
	return func(o *options) { o.retry = retry }
}

func buildOptions(opts []Option) options {
	o := options{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry:      NoRetry{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NormalizeShopDomain strips scheme and trailing slashes
func NormalizeShopDomain(shop string) string {
	shop = strings.TrimSpace(shop)
	shop = strings.TrimPrefix(shop, "https://")
	shop = strings.TrimPrefix(shop, "http://")
	return strings.ToLower(strings.TrimSuffix(shop, "/"))
}

// NewClient creates an Admin GraphQL client for one shop
func NewClient(cfg config.ShopifyConfig, shopDomain, accessToken string, logger *zap.Logger, opts ...Option) *Client {
	o := buildOptions(opts)
	shopDomain = NormalizeShopDomain(shopDomain)

	baseURL := o.baseURL
	if baseURL == "" {
		baseURL = "https://" + shopDomain
	}

	return &Client{
		shopDomain:  shopDomain,
		accessToken: accessToken,
		apiVersion:  cfg.APIVersion,
		baseURL:     baseURL,
		httpClient:  o.httpClient,
		retry:       o.retry,
		logger:      logger,
	}
}

// ShopDomain returns the shop the client talks to
func (c *Client) ShopDomain() string {
	return c.shopDomain
}

// GraphQLRequest represents a GraphQL request
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

// GraphQLErrors is returned when the response carries top-level errors
type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	messages := make([]string, len(e))
	for i, err := range e {
		messages[i] = err.Message
	}
	return "graphQL errors: " + strings.Join(messages, "; ")
}

// HTTPError is returned for non-200 responses
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("shopify API error: status %d, body: %s", e.StatusCode, e.Body)
}

// UserError is a mutation-level validation error
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// UserErrors is returned when a mutation answers with userErrors
type UserErrors []UserError

func (e UserErrors) Error() string {
	messages := make([]string, len(e))
	for i, err := range e {
		messages[i] = err.Message
	}
	return "userErrors: " + strings.Join(messages, "; ")
}

func (c *Client) graphQLURL() string {
	return fmt.Sprintf("%s/admin/api/%s/graphql.json", c.baseURL, c.apiVersion)
}

// Execute executes a GraphQL query/mutation once
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}) (*GraphQLResponse, error) {
	jsonData, err := json.Marshal(GraphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	status, body, err := c.Forward(ctx, jsonData)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &HTTPError{StatusCode: status, Body: string(body)}
	}

	var graphQLResp GraphQLResponse
	if err := json.Unmarshal(body, &graphQLResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}
	if len(graphQLResp.Errors) > 0 {
		return nil, GraphQLErrors(graphQLResp.Errors)
	}

	return &graphQLResp, nil
}

// Query executes a read under the retry policy and decodes data into out
func (c *Client) Query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	attempt := 0
	return c.retry.Do(ctx, func() error {
		attempt++
		resp, err := c.Execute(ctx, query, variables)
		if err != nil {
			c.logger.Debug("Shopify query failed",
				zap.String("shop", c.shopDomain),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return err
		}
		return decodeData(resp, out)
	})
}

// Mutate executes a mutation exactly once and decodes data into out
func (c *Client) Mutate(ctx context.Context, mutation string, variables map[string]interface{}, out interface{}) error {
	resp, err := c.Execute(ctx, mutation, variables)
	if err != nil {
		return err
	}
	return decodeData(resp, out)
}

// Forward posts a raw GraphQL body with the shop's access token and returns the
// upstream status and body unchanged
func (c *Client) Forward(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphQLURL(), bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func decodeData(resp *GraphQLResponse, out interface{}) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}
