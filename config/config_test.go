package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv removes a variable for the test while keeping t.Setenv's restore
// behavior.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "storefront")
	t.Setenv("JWT_SECRET", "test-secret")
}

func clearOptionalEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DB_HOST", "DB_PORT", "DB_POOL_SIZE",
		"JWT_TOKEN_DURATION", "AUTH_PROTECT_PRODUCTS",
		"PORT", "MIGRATIONS_PATH", "SEED_ON_START", "SEED_DATA_DIR",
	} {
		unsetEnv(t, key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 10, cfg.DB.MaxSize)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenDuration)
	assert.False(t, cfg.Auth.ProtectProducts)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "", cfg.Server.MigrationsPath)
	assert.False(t, cfg.Server.SeedOnStart)
	assert.Equal(t, "./data", cfg.Server.SeedDataDir)
}

func TestLoadConfigMissingRequiredCollectsAllErrors(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)
	unsetEnv(t, "DB_USER")
	unsetEnv(t, "JWT_SECRET")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_POOL_SIZE", "25")
	t.Setenv("JWT_TOKEN_DURATION", "2h")
	t.Setenv("AUTH_PROTECT_PRODUCTS", "true")
	t.Setenv("PORT", "9090")
	t.Setenv("MIGRATIONS_PATH", "./migrations")
	t.Setenv("SEED_ON_START", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 5433, cfg.DB.Port)
	assert.Equal(t, 25, cfg.DB.MaxSize)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenDuration)
	assert.True(t, cfg.Auth.ProtectProducts)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "./migrations", cfg.Server.MigrationsPath)
	assert.True(t, cfg.Server.SeedOnStart)
}

func TestLoadConfigInvalidValues(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("JWT_TOKEN_DURATION", "soon")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PORT")
	assert.Contains(t, err.Error(), "JWT_TOKEN_DURATION")
}

func TestLoadConfigClampsPoolSize(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)
	t.Setenv("DB_POOL_SIZE", "0")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_POOL_SIZE")
}
