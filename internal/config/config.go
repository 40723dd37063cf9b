// Package config loads runtime settings from the environment.
//
// Settings come from SKILLSWAP_* environment variables. A .env file in the
// working directory is read first, so local overrides do not have to be
// exported by hand; real environment variables always win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store drivers accepted by SKILLSWAP_STORE.
const (
	StoreSQLite = "sqlite"
	StoreBolt   = "bolt"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// DefaultJWTSecret is the stamp key used when SKILLSWAP_JWT_SECRET is unset.
// It is public, so it only protects a server bound to loopback.
const DefaultJWTSecret = "skillswap-local-session-secret"

// prefix is prepended to every field name, e.g. STORE → SKILLSWAP_STORE.
const prefix = "SKILLSWAP"

// Config holds everything the CLI and the API server need to start.
type Config struct {
	Store    string `envconfig:"STORE" default:"sqlite"`
	DBPath   string `envconfig:"DB_PATH" default:"data/skillswap.db"`
	BoltPath string `envconfig:"BOLT_PATH" default:"data/skillswap.bolt"`
	RedisURL string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`

	Host string `envconfig:"HOST" default:"127.0.0.1"`
	Port int    `envconfig:"PORT" default:"8080"`

	// JWTSecret signs session stamps. The default is fine for a loopback
	// server; set a random value when anything else can reach the port.
	JWTSecret  string        `envconfig:"JWT_SECRET" default:"skillswap-local-session-secret"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	AdminEmail   string `envconfig:"ADMIN_EMAIL"`
	ApplyRatings bool   `envconfig:"APPLY_RATINGS" default:"true"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the given .env files (".env" when none are named), then
// processes the environment into a Config and validates it.
// Missing .env files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: reading %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot check on its own.
func (c *Config) Validate() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreSQLite, StoreBolt, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("config: unknown store %q (want sqlite, bolt, redis or memory)", c.Store)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("config: SKILLSWAP_JWT_SECRET must be at least 16 characters")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// DefaultSecretExposed reports whether the server would sign stamps with
// DefaultJWTSecret while listening on something other than loopback.
// An empty host listens on every interface.
func (c *Config) DefaultSecretExposed() bool {
	return c.JWTSecret == DefaultJWTSecret && !isLoopback(c.Host)
}

func isLoopback(host string) bool {
	host = strings.Trim(strings.TrimSpace(host), "[]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Addr is the listen address for the API server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Level returns the configured slog level. Validate has already rejected
// unknown names, so this never fails after Load.
func (c *Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
	}
	return level, nil
}
