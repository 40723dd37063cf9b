package server

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/skillswap/internal/config"
	"github.com/sakif/skillswap/internal/repository/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		Store:        config.StoreMemory,
		Host:         "127.0.0.1",
		Port:         8080,
		JWTSecret:    "server-test-secret-32-characters",
		SessionTTL:   time.Hour,
		ApplyRatings: true,
		LogLevel:     "info",
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHealth(t *testing.T) {
	store := memory.New()
	srv, err := NewWithStore(testConfig(), store, testLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	store.FailWith = errors.New("disk gone")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, err := NewWithStore(testConfig(), memory.New(), testLogger())
	require.NoError(t, err)

	// One request through the router so the counters have a sample.
	srv.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users", nil))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "skillswap_requests_total")
}

func TestNewWithStore_BadSecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = "short"

	_, err := NewWithStore(cfg, memory.New(), testLogger())
	assert.Error(t, err)
}

func TestNewWithStore_WarnsOnExposedDefaultSecret(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		secret   string
		wantWarn bool
	}{
		{"loopback with default", "127.0.0.1", config.DefaultJWTSecret, false},
		{"all interfaces with default", "0.0.0.0", config.DefaultJWTSecret, true},
		{"all interfaces with own secret", "0.0.0.0", "server-test-secret-32-characters", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Host = tt.host
			cfg.JWTSecret = tt.secret

			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, nil))
			_, err := NewWithStore(cfg, memory.New(), logger)
			require.NoError(t, err)

			if tt.wantWarn {
				assert.Contains(t, logs.String(), "level=WARN")
				assert.Contains(t, logs.String(), "SKILLSWAP_JWT_SECRET")
			} else {
				assert.NotContains(t, logs.String(), "SKILLSWAP_JWT_SECRET")
			}
		})
	}
}

func TestOpenStore(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"memory", func(c *config.Config) { c.Store = config.StoreMemory }, false},
		{"sqlite in memory", func(c *config.Config) {
			c.Store = config.StoreSQLite
			c.DBPath = ":memory:"
		}, false},
		{"sqlite file in new dir", func(c *config.Config) {
			c.Store = config.StoreSQLite
			c.DBPath = filepath.Join(t.TempDir(), "nested", "skillswap.db")
		}, false},
		{"bolt", func(c *config.Config) {
			c.Store = config.StoreBolt
			c.BoltPath = filepath.Join(t.TempDir(), "skillswap.bolt")
		}, false},
		{"unknown", func(c *config.Config) { c.Store = "etcd" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)

			store, err := OpenStore(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, store)
			assert.NoError(t, store.Close())
		})
	}
}
