package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Host        string // HOST: public app URL, e.g. https://fields.example.com
	StoreDriver string // STORE_DRIVER: postgres, mongo or memory
	Database    DatabaseConfig
	Mongo       MongoConfig
	Shopify     ShopifyConfig
	Retry       RetryConfig
	Cache       CacheConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// MongoConfig is used when STORE_DRIVER=mongo
type MongoConfig struct {
	URI      string
	Database string
}

type ShopifyConfig struct {
	APIKey     string
	APISecret  string
	Scopes     []string
	APIVersion string
}

// RetryConfig controls the read-path retry policy for Admin API calls
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type CacheConfig struct {
	SessionTTL time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8081")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.AutomaticEnv()

	// .env is optional, env vars win
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8081"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Host:        strings.TrimSuffix(strings.TrimSpace(getEnvOrViper("HOST", "http://localhost:8081")), "/"),
		StoreDriver: strings.ToLower(getEnvOrViper("STORE_DRIVER", StoreDriverPostgres)),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "fields"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:      strings.TrimSpace(getEnvOrViper("MONGO_URI", "mongodb://localhost:27017")),
			Database: getEnvOrViper("MONGO_DATABASE", "fields"),
		},
		Shopify: ShopifyConfig{
			APIKey:     strings.TrimSpace(getEnvOrViper("SHOPIFY_API_KEY", "")),
			APISecret:  strings.TrimSpace(getEnvOrViper("SHOPIFY_API_SECRET", "")),
			Scopes:     splitScopes(getEnvOrViper("SCOPES", "read_products,write_products")),
			APIVersion: getEnvOrViper("SHOPIFY_API_VERSION", "2021-04"),
		},
		Retry: RetryConfig{
			MaxAttempts:     getIntOrDefault("RETRY_MAX_ATTEMPTS", 3),
			InitialInterval: getDurationOrDefault("RETRY_INITIAL_INTERVAL", 500*time.Millisecond),
			MaxInterval:     getDurationOrDefault("RETRY_MAX_INTERVAL", 2*time.Second),
		},
		Cache: CacheConfig{
			SessionTTL: getDurationOrDefault("SESSION_CACHE_TTL", 10*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields
func (c *Config) Validate() error {
	if c.Shopify.APIKey == "" {
		return fmt.Errorf("SHOPIFY_API_KEY is required")
	}
	if c.Shopify.APISecret == "" {
		return fmt.Errorf("SHOPIFY_API_SECRET is required")
	}
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMongo, StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}

func splitScopes(raw string) []string {
	var scopes []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}
