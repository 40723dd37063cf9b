package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noEnvFile points Load at a file that does not exist.
func noEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "data/skillswap.db", cfg.DBPath)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.ApplyRatings)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SKILLSWAP_STORE", "BOLT")
	t.Setenv("SKILLSWAP_PORT", "9090")
	t.Setenv("SKILLSWAP_APPLY_RATINGS", "false")
	t.Setenv("SKILLSWAP_LOG_LEVEL", "debug")
	t.Setenv("SKILLSWAP_SESSION_TTL", "90m")
	t.Setenv("SKILLSWAP_ADMIN_EMAIL", "root@example.com")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, StoreBolt, cfg.Store)
	assert.Equal(t, 9090, cfg.Port)
	assert.False(t, cfg.ApplyRatings)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "root@example.com", cfg.AdminEmail)
}

func TestLoad_DotEnvFile(t *testing.T) {
	// Register cleanup for the variables the file will set, then clear them
	// so godotenv is allowed to fill them in.
	for _, key := range []string{"SKILLSWAP_STORE", "SKILLSWAP_REDIS_URL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	// A real environment variable beats the file.
	t.Setenv("SKILLSWAP_PORT", "7070")

	path := filepath.Join(t.TempDir(), ".env")
	content := "SKILLSWAP_STORE=redis\nSKILLSWAP_REDIS_URL=redis://cache:6379/2\nSKILLSWAP_PORT=1111\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "redis://cache:6379/2", cfg.RedisURL)
	assert.Equal(t, 7070, cfg.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown store", "SKILLSWAP_STORE", "postgres"},
		{"port out of range", "SKILLSWAP_PORT", "70000"},
		{"port not a number", "SKILLSWAP_PORT", "eighty"},
		{"short secret", "SKILLSWAP_JWT_SECRET", "tiny"},
		{"unknown log level", "SKILLSWAP_LOG_LEVEL", "chatty"},
		{"bad ttl", "SKILLSWAP_SESSION_TTL", "forever"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load(noEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestDefaultSecretExposed(t *testing.T) {
	tests := []struct {
		host   string
		secret string
		want   bool
	}{
		{"127.0.0.1", DefaultJWTSecret, false},
		{"localhost", DefaultJWTSecret, false},
		{"::1", DefaultJWTSecret, false},
		{"[::1]", DefaultJWTSecret, false},
		{"0.0.0.0", DefaultJWTSecret, true},
		{"", DefaultJWTSecret, true},
		{"192.168.1.20", DefaultJWTSecret, true},
		{"skillswap.example.com", DefaultJWTSecret, true},
		{"0.0.0.0", "a-real-secret-from-the-operator", false},
	}
	for _, tt := range tests {
		t.Run(tt.host+"/"+tt.secret, func(t *testing.T) {
			cfg := &Config{Host: tt.host, JWTSecret: tt.secret}
			assert.Equal(t, tt.want, cfg.DefaultSecretExposed())
		})
	}
}

func TestLoad_DefaultSecret(t *testing.T) {
	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.False(t, cfg.DefaultSecretExposed(), "the default host is loopback")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
