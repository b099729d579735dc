package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"product-search/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"CONFIG_FILE", "SERVER_ADDRESS", "ENVIRONMENT", "AWS_REGION", "DYNAMODB_TABLE",
	"TABLE_NAME", "DYNAMODB_ENDPOINT", "PRODUCT_INDEX", "PRODUCT_ATTRIBUTE", "PAGE_SIZE",
	"LOG_LEVEL", "ENABLE_CIRCUIT_BREAKER", "BREAKER_MIN_REQUESTS", "BREAKER_FAILURE_RATIO",
	"BREAKER_TIMEOUT", "ENABLE_METRICS", "ENABLE_TRACING", "ENABLE_CORS",
}

// clearEnv blanks every variable the loader reads; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultTableName, cfg.DynamoDBTable)
	assert.Equal(t, "", cfg.ProductIndex)
	assert.False(t, cfg.UsesIndex())
	assert.Equal(t, "product", cfg.ProductAttribute)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.EnableCircuitBreaker)
	assert.Equal(t, 60*time.Second, cfg.BreakerTimeout)
}

func TestLoadConfig_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DYNAMODB_TABLE", "Orders")
	t.Setenv("PRODUCT_INDEX", "product-index")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ENABLE_METRICS", "true")
	t.Setenv("BREAKER_TIMEOUT", "5s")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "Orders", cfg.DynamoDBTable)
	assert.Equal(t, "product-index", cfg.ProductIndex)
	assert.True(t, cfg.UsesIndex())
	assert.Equal(t, 25, cfg.PageSize)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.EnableMetrics)
	assert.Equal(t, 5*time.Second, cfg.BreakerTimeout)
}

func TestLoadConfig_TableNameFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("TABLE_NAME", "legacy-table")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "legacy-table", cfg.DynamoDBTable)

	t.Setenv("DYNAMODB_TABLE", "preferred-table")
	cfg, err = config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "preferred-table", cfg.DynamoDBTable)
}

func TestLoadConfig_FileOverriddenByEnvironment(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("dynamodb_table: FileTable\nproduct_index: file-index\npage_size: 10\nbreaker_timeout: 30s\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PRODUCT_INDEX", "env-index")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "FileTable", cfg.DynamoDBTable)
	assert.Equal(t, "env-index", cfg.ProductIndex)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := config.LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{name: "valid defaults", env: nil, wantErr: false},
		{name: "unknown environment", env: map[string]string{"ENVIRONMENT": "qa"}, wantErr: true},
		{name: "negative page size", env: map[string]string{"PAGE_SIZE": "-1"}, wantErr: true},
		{name: "page size above int32", env: map[string]string{"PAGE_SIZE": "4294967297"}, wantErr: true},
		{name: "largest page size", env: map[string]string{"PAGE_SIZE": "2147483647"}, wantErr: false},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "verbose"}, wantErr: true},
		{name: "failure ratio above one", env: map[string]string{"BREAKER_FAILURE_RATIO": "1.5"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.LoadConfig()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid configuration")
			} else {
				require.NoError(t, err)
			}
		})
	}
}
