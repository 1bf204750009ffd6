package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SHOPIFY_API_KEY", "key")
	t.Setenv("SHOPIFY_API_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "2021-04", cfg.Shopify.APIVersion)
	assert.Equal(t, []string{"read_products", "write_products"}, cfg.Shopify.Scopes)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.InitialInterval)
	assert.Equal(t, 10*time.Minute, cfg.Cache.SessionTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SHOPIFY_API_KEY", "key")
	t.Setenv("SHOPIFY_API_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("HOST", "https://fields.example.com/")
	t.Setenv("SCOPES", " read_products , write_products,,")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("RETRY_MAX_INTERVAL", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMongo, cfg.StoreDriver)
	assert.Equal(t, "https://fields.example.com", cfg.Host)
	assert.Equal(t, []string{"read_products", "write_products"}, cfg.Shopify.Scopes)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 3*time.Second, cfg.Retry.MaxInterval)
}

func TestLoad_RequiresCredentials(t *testing.T) {
	t.Setenv("SHOPIFY_API_KEY", "")
	t.Setenv("SHOPIFY_API_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &Config{
		StoreDriver: "sqlite",
		Shopify:     ShopifyConfig{APIKey: "k", APISecret: "s"},
		Retry:       RetryConfig{MaxAttempts: 1},
	}
	assert.EqualError(t, cfg.Validate(), `unsupported STORE_DRIVER "sqlite"`)
}
