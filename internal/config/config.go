// Package config resolves the runtime configuration once at process start:
// environment variables first, then an optional YAML overlay for local
// development. Handlers and repositories receive the resulting struct and
// never read the environment themselves.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds everything the process needs to run.
type Config struct {
	// Environment is one of development, staging, production.
	Environment string
	LogLevel    string

	// AWS / storage
	AWSRegion string
	TableName string
	IndexName string

	// IsOffline pins the storage client to DynamoDBEndpoint (DynamoDB Local)
	// instead of the managed service. Set by serverless-offline and by the
	// local server's default config.
	IsOffline        bool
	DynamoDBEndpoint string

	// Local HTTP server
	HTTPAddr string
	// DefaultUserID is the identity assumed locally when no X-User-Id header
	// is sent. Ignored in Lambda, where the authorizer supplies the caller.
	DefaultUserID string

	MetricsNamespace string

	Features Features
}

// Features toggles the optional operational layers.
type Features struct {
	EnableMetrics        bool
	EnableTracing        bool
	EnableCircuitBreaker bool
}

// Load builds the configuration from the environment, applies the overlay
// file named by CONFIG_FILE when present, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
		TableName: getEnv("TABLE_NAME", "projects-api-dev"),
		IndexName: getEnv("INDEX_NAME", "UserIndex"),

		IsOffline:        getEnvBool("IS_OFFLINE", false),
		DynamoDBEndpoint: getEnv("DYNAMODB_ENDPOINT", "http://localhost:8000"),

		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DefaultUserID: getEnv("DEFAULT_USER_ID", "local-user"),

		MetricsNamespace: getEnv("METRICS_NAMESPACE", "ProjectsAPI"),

		Features: Features{
			EnableMetrics:        getEnvBool("ENABLE_METRICS", false),
			EnableTracing:        getEnvBool("ENABLE_TRACING", false),
			EnableCircuitBreaker: getEnvBool("ENABLE_CIRCUIT_BREAKER", false),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, fmt.Errorf("config overlay %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combinations the rest of the process depends on.
func (c *Config) Validate() error {
	if c.TableName == "" {
		return fmt.Errorf("TABLE_NAME must not be empty")
	}
	if c.IndexName == "" {
		return fmt.Errorf("INDEX_NAME must not be empty")
	}
	if c.AWSRegion == "" {
		return fmt.Errorf("AWS_REGION must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel)
	}
	if c.IsOffline && c.DynamoDBEndpoint == "" {
		return fmt.Errorf("DYNAMODB_ENDPOINT must be set when IS_OFFLINE is true")
	}
	return nil
}

// StorageEndpoint returns the endpoint override for the DynamoDB client:
// the local endpoint when offline, empty (use AWS) otherwise.
func (c *Config) StorageEndpoint() string {
	if c.IsOffline {
		return c.DynamoDBEndpoint
	}
	return ""
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed
	}
	return value == "yes"
}
