package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Order    OrderConfig
	Notify   NotifyConfig
	Kafka    KafkaConfig
	S3       S3Config
	Catalog  CatalogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
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
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret string
	// APIKey, when set, authenticates service callers as administrators.
	APIKey string
}

// OrderConfig holds order lifecycle policy.
type OrderConfig struct {
	DeliveryOTPTTL   time.Duration
	PasswordOTPTTL   time.Duration
	OTPDigits        int
	Scopes           map[string][]string // named category scopes for admin listings
	DefaultListLimit int
	MaximumListLimit int
}

// NotifyConfig holds outbound notification configuration.
type NotifyConfig struct {
	Provider        string // "sendgrid", "postmark" or "log"
	SendGridAPIKey  string
	PostmarkToken   string
	SenderEmail     string
	SenderName      string
	DispatchTimeout time.Duration
}

// KafkaConfig holds order event publishing configuration.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// S3Config holds AWS S3 configuration for catalogue seed files.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "catalog/")
}

// CatalogConfig lists catalogue seed files consumed by cmd/seed.
type CatalogConfig struct {
	SeedFiles []string
}

// Load loads configuration from environment variables.
// A .env file in the working directory is read first when present;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
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
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			APIKey:    getEnv("API_KEY", ""),
		},
		Order: OrderConfig{
			DeliveryOTPTTL:   getEnvAsDuration("DELIVERY_OTP_TTL", 10*time.Minute),
			PasswordOTPTTL:   getEnvAsDuration("PASSWORD_OTP_TTL", 10*time.Minute),
			OTPDigits:        getEnvAsInt("OTP_DIGITS", 6),
			Scopes:           parseScopes(getEnv("ORDER_SCOPES", "bamboo=bamboo")),
			DefaultListLimit: getEnvAsInt("ORDER_LIST_DEFAULT_LIMIT", 20),
			MaximumListLimit: getEnvAsInt("ORDER_LIST_MAX_LIMIT", 100),
		},
		Notify: NotifyConfig{
			Provider:        getEnv("NOTIFY_PROVIDER", "log"),
			SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
			PostmarkToken:   getEnv("POSTMARK_SERVER_TOKEN", ""),
			SenderEmail:     getEnv("NOTIFY_SENDER_EMAIL", "no-reply@storefront.local"),
			SenderName:      getEnv("NOTIFY_SENDER_NAME", "Storefront"),
			DispatchTimeout: getEnvAsDuration("NOTIFY_DISPATCH_TIMEOUT", 5*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "storefront.orders"),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "catalog/"),
		},
		Catalog: CatalogConfig{
			SeedFiles: getEnvAsList("CATALOG_SEED_FILES", []string{"data/catalog/products.jsonl.gz"}),
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

	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
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

	if c.Order.DeliveryOTPTTL <= 0 || c.Order.PasswordOTPTTL <= 0 {
		return fmt.Errorf("OTP TTL must be positive")
	}

	if c.Order.OTPDigits < 4 || c.Order.OTPDigits > 10 {
		return fmt.Errorf("invalid OTP digits: %d (must be between 4 and 10)", c.Order.OTPDigits)
	}

	if c.Order.DefaultListLimit < 1 || c.Order.MaximumListLimit < c.Order.DefaultListLimit {
		return fmt.Errorf("invalid order list limits: default %d, max %d", c.Order.DefaultListLimit, c.Order.MaximumListLimit)
	}

	switch c.Notify.Provider {
	case "log":
	case "sendgrid":
		if c.Notify.SendGridAPIKey == "" {
			return fmt.Errorf("SendGrid API key is required when provider is sendgrid")
		}
	case "postmark":
		if c.Notify.PostmarkToken == "" {
			return fmt.Errorf("Postmark server token is required when provider is postmark")
		}
	default:
		return fmt.Errorf("invalid notify provider: %s (must be sendgrid, postmark, or log)", c.Notify.Provider)
	}

	if c.Notify.DispatchTimeout <= 0 {
		return fmt.Errorf("notification dispatch timeout must be positive")
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka topic is required when brokers are configured")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
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

// parseScopes parses "name=cat1,cat2;other=cat3" into lower-cased category lists.
func parseScopes(raw string) map[string][]string {
	scopes := make(map[string][]string)
	for _, entry := range strings.Split(raw, ";") {
		name, cats, ok := strings.Cut(entry, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if !ok || name == "" {
			continue
		}
		for _, c := range strings.Split(cats, ",") {
			if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
				scopes[name] = append(scopes[name], c)
			}
		}
	}
	return scopes
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

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList retrieves a comma separated environment variable or returns a default value.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
