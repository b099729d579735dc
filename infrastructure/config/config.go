package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultTableName is used when neither DYNAMODB_TABLE nor TABLE_NAME is set.
const DefaultTableName = "Tickets"

// Config holds all application configuration. It is loaded once at startup
// and never mutated afterwards.
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address" validate:"required"`
	Environment   string `yaml:"environment" validate:"oneof=development staging production"`

	// AWS configuration
	AWSRegion        string `yaml:"aws_region" validate:"required"`
	DynamoDBTable    string `yaml:"dynamodb_table" validate:"required"`
	DynamoDBEndpoint string `yaml:"dynamodb_endpoint"`

	// Search configuration
	ProductIndex     string `yaml:"product_index"` // empty selects the full scan strategy
	ProductAttribute string `yaml:"product_attribute" validate:"required"`
	PageSize         int    `yaml:"page_size" validate:"gte=0,lte=2147483647"`

	// Logging
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Circuit breaker
	EnableCircuitBreaker bool          `yaml:"enable_circuit_breaker"`
	BreakerMinRequests   int           `yaml:"breaker_min_requests" validate:"gte=1"`
	BreakerFailureRatio  float64       `yaml:"breaker_failure_ratio" validate:"gt=0,lte=1"`
	BreakerTimeout       time.Duration `yaml:"breaker_timeout"`

	// Feature flags
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableTracing bool `yaml:"enable_tracing"`
	EnableCORS    bool `yaml:"enable_cors"`
}

// defaults returns the configuration used before any file or environment overrides.
func defaults() *Config {
	return &Config{
		ServerAddress:        ":8080",
		Environment:          "development",
		AWSRegion:            "us-east-1",
		DynamoDBTable:        DefaultTableName,
		ProductAttribute:     "product",
		LogLevel:             "info",
		BreakerMinRequests:   5,
		BreakerFailureRatio:  0.8,
		BreakerTimeout:       60 * time.Second,
		EnableCORS:           true,
		EnableCircuitBreaker: false,
	}
}

// LoadConfig loads configuration from an optional YAML file (CONFIG_FILE)
// and then from environment variables, which take precedence.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.DynamoDBTable = getEnv("DYNAMODB_TABLE", getEnv("TABLE_NAME", cfg.DynamoDBTable))
	cfg.DynamoDBEndpoint = getEnv("DYNAMODB_ENDPOINT", cfg.DynamoDBEndpoint)
	cfg.ProductIndex = getEnv("PRODUCT_INDEX", cfg.ProductIndex)
	cfg.ProductAttribute = getEnv("PRODUCT_ATTRIBUTE", cfg.ProductAttribute)
	cfg.PageSize = getEnvInt("PAGE_SIZE", cfg.PageSize)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.EnableCircuitBreaker = getEnvBool("ENABLE_CIRCUIT_BREAKER", cfg.EnableCircuitBreaker)
	cfg.BreakerMinRequests = getEnvInt("BREAKER_MIN_REQUESTS", cfg.BreakerMinRequests)
	cfg.BreakerFailureRatio = getEnvFloat("BREAKER_FAILURE_RATIO", cfg.BreakerFailureRatio)
	cfg.BreakerTimeout = getEnvDuration("BREAKER_TIMEOUT", cfg.BreakerTimeout)

	cfg.EnableMetrics = getEnvBool("ENABLE_METRICS", cfg.EnableMetrics)
	cfg.EnableTracing = getEnvBool("ENABLE_TRACING", cfg.EnableTracing)
	cfg.EnableCORS = getEnvBool("ENABLE_CORS", cfg.EnableCORS)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// UsesIndex reports whether searches go through the secondary index.
func (c *Config) UsesIndex() bool {
	return c.ProductIndex != ""
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
