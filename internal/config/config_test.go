package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "kanso-grid", cfg.JWTIssuer)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 100, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 30*time.Minute, cfg.HabitCacheTTL)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"JWT_SECRET":        "s3cret",
		"PORT":              "9090",
		"STORAGE":           "memory",
		"DB_USER":           "u",
		"DB_PASSWORD":       "p",
		"DB_NAME":           "n",
		"DB_HOST":           "db",
		"DB_PORT":           "6543",
		"REDIS_HOST":        "redis",
		"REDIS_DB":          "3",
		"TOKEN_TTL":         "90m",
		"RATE_LIMIT":        "0",
		"RATE_LIMIT_WINDOW": "10s",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "postgres://u:p@db:6543/n?sslmode=disable", cfg.Database.DSN())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 0, cfg.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.RateLimitWindow)
}

func TestFromLookup_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"Missing secret", map[string]string{}, "JWT_SECRET"},
		{"Unknown storage", map[string]string{"JWT_SECRET": "s", "STORAGE": "sqlite"}, "STORAGE"},
		{"Bad ttl", map[string]string{"JWT_SECRET": "s", "TOKEN_TTL": "tomorrow"}, "TOKEN_TTL"},
		{"Zero ttl", map[string]string{"JWT_SECRET": "s", "TOKEN_TTL": "0s"}, "TOKEN_TTL"},
		{"Bad rate limit", map[string]string{"JWT_SECRET": "s", "RATE_LIMIT": "lots"}, "RATE_LIMIT"},
		{"Negative rate limit", map[string]string{"JWT_SECRET": "s", "RATE_LIMIT": "-1"}, "RATE_LIMIT"},
		{"Bad redis db", map[string]string{"JWT_SECRET": "s", "REDIS_DB": "x"}, "REDIS_DB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(tt.vars))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("KANSO_TEST_UNUSED=1\nJWT_SECRET=from-file\nPORT=7070\n"), 0o600))

	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "6060")
	os.Unsetenv("JWT_SECRET")
	t.Cleanup(func() { os.Unsetenv("KANSO_TEST_UNUSED") })

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "6060", cfg.Port, "existing variables win over the file")
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
}
