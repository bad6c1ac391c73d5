package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Catalog source names accepted in CATALOG_SOURCE.
const (
	CatalogSourceShopify = "shopify"
	CatalogSourceFile    = "file"
	CatalogSourceS3      = "s3"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Shopify   ShopifyConfig
	Catalog   CatalogConfig
	RateLimit RateLimitConfig
	Orders    OrderConfig
}

// AppConfig holds process-wide settings.
type AppConfig struct {
	Environment string
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins string
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
	AutoMigrate     bool
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds token and password hashing settings.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// ShopifyConfig holds Admin API settings.
type ShopifyConfig struct {
	StoreDomain string
	AccessToken string
	APIVersion  string
	Timeout     time.Duration
	// Endpoint overrides the URL derived from StoreDomain, mainly for tests.
	Endpoint string
}

// CatalogConfig selects where discount definitions are read from.
type CatalogConfig struct {
	Source string
	// FilePath is the local snapshot used by the file source, and as a
	// fallback for the other sources when set.
	FilePath  string
	S3Bucket  string
	S3Region  string
	S3Key     string
	RulesPath string // optional override of the built-in combination rules
}

// RateLimitConfig throttles the public authentication endpoints per client IP.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
	// IdleTTL is how long an unused client bucket is kept.
	IdleTTL time.Duration
}

// OrderConfig shapes the orders placed on the store from a user's cart.
type OrderConfig struct {
	Currency      string
	TaxTitle      string
	TaxRate       decimal.Decimal
	ShippingTitle string
	Gateway       string
	Tags          []string
	// DialCode is prefixed to national phone numbers.
	DialCode      string
}

// Load loads configuration from environment variables, after seeding them
// from a .env file when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load(getEnv("ENV_FILE", ".env"))

	cfg := &Config{
		App: AppConfig{
			Environment: getEnv("APP_ENV", "production"),
		},
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "storefront"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			TokenTTL:   getEnvAsDuration("JWT_TTL", 7*24*time.Hour),
			BcryptCost: getEnvAsInt("BCRYPT_COST", 10),
		},
		Shopify: ShopifyConfig{
			StoreDomain: getEnv("SHOPIFY_STORE_DOMAIN", ""),
			AccessToken: getEnv("SHOPIFY_ACCESS_TOKEN", ""),
			APIVersion:  getEnv("SHOPIFY_API_VERSION", "2025-07"),
			Timeout:     getEnvAsDuration("SHOPIFY_TIMEOUT", 15*time.Second),
			Endpoint:    getEnv("SHOPIFY_ENDPOINT", ""),
		},
		Catalog: CatalogConfig{
			Source:    getEnv("CATALOG_SOURCE", CatalogSourceShopify),
			FilePath:  getEnv("CATALOG_FILE", ""),
			S3Bucket:  getEnv("CATALOG_S3_BUCKET", ""),
			S3Region:  getEnv("CATALOG_S3_REGION", "us-east-1"),
			S3Key:     getEnv("CATALOG_S3_KEY", "discounts/catalog.json.gz"),
			RulesPath: getEnv("COMBINATION_RULES_FILE", ""),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("AUTH_RATE_LIMIT_PER_MINUTE", 30),
			Burst:             getEnvAsInt("AUTH_RATE_LIMIT_BURST", 10),
			IdleTTL:           getEnvAsDuration("AUTH_RATE_LIMIT_IDLE_TTL", 10*time.Minute),
		},
		Orders: OrderConfig{
			Currency:      getEnv("ORDER_CURRENCY", "PKR"),
			TaxTitle:      getEnv("ORDER_TAX_TITLE", "GST"),
			TaxRate:       getEnvAsDecimal("ORDER_TAX_RATE", decimal.RequireFromString("0.17")),
			ShippingTitle: getEnv("ORDER_SHIPPING_TITLE", "Standard Shipping"),
			Gateway:       getEnv("ORDER_GATEWAY", "Cash on Delivery"),
			Tags:          getEnvAsList("ORDER_TAGS", []string{"online-order"}),
			DialCode:      getEnv("ORDER_PHONE_DIAL_CODE", "92"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}

	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("invalid bcrypt cost: %d (must be between 4 and 31)", c.Auth.BcryptCost)
	}

	if c.Shopify.StoreDomain == "" && c.Shopify.Endpoint == "" {
		return fmt.Errorf("Shopify store domain is required")
	}

	if c.Shopify.AccessToken == "" {
		return fmt.Errorf("Shopify access token is required")
	}

	switch c.Catalog.Source {
	case CatalogSourceShopify:
	case CatalogSourceFile:
		if c.Catalog.FilePath == "" {
			return fmt.Errorf("catalog file path is required when catalog source is file")
		}
	case CatalogSourceS3:
		if c.Catalog.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required when catalog source is s3")
		}
		if c.Catalog.S3Region == "" {
			return fmt.Errorf("S3 region is required when catalog source is s3")
		}
	default:
		return fmt.Errorf("invalid catalog source: %s (must be shopify, file, or s3)", c.Catalog.Source)
	}

	if c.RateLimit.RequestsPerMinute < 1 {
		return fmt.Errorf("rate limit must be at least 1 request per minute")
	}

	if c.RateLimit.Burst < 1 {
		return fmt.Errorf("rate limit burst must be at least 1")
	}

	if c.RateLimit.IdleTTL <= 0 {
		return fmt.Errorf("rate limit idle TTL must be positive")
	}

	if len(c.Orders.Currency) != 3 {
		return fmt.Errorf("invalid order currency: %q (must be an ISO 4217 code)", c.Orders.Currency)
	}

	if c.Orders.TaxRate.IsNegative() || c.Orders.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("invalid order tax rate: %s (must be in [0, 1))", c.Orders.TaxRate)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration syntax ("15s", "168h").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsDecimal retrieves an environment variable as a decimal or returns a default value.
func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
