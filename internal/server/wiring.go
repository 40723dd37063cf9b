package server

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/skillswap/internal/auth"
	"github.com/sakif/skillswap/internal/config"
	"github.com/sakif/skillswap/internal/metrics"
	"github.com/sakif/skillswap/internal/repository"
	boltRepo "github.com/sakif/skillswap/internal/repository/bolt"
	"github.com/sakif/skillswap/internal/repository/memory"
	redisRepo "github.com/sakif/skillswap/internal/repository/redis"
	sqliteRepo "github.com/sakif/skillswap/internal/repository/sqlite"
	"github.com/sakif/skillswap/internal/service"
)

// redisPrefix namespaces every key this app writes to a shared Redis.
const redisPrefix = "skillswap:"

// OpenStore opens the backend named by cfg.Store.
//
// IMPORT ALIASES:
// Each backend package is named after the library it wraps (sqlite, bolt,
// redis), which would shadow the driver packages. The Repo suffix keeps the
// two apart when reading this file.
func OpenStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		if cfg.DBPath != ":memory:" {
			// os.MkdirAll works like `mkdir -p`; the database file itself is
			// created by SQLite on first open.
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.StoreBolt:
		db, err := boltRepo.Open(cfg.BoltPath, "")
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.StoreRedis:
		client, err := redisRepo.Open(cfg.RedisURL, redisPrefix)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.StoreMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// Services is the wired service layer. Both surfaces (the HTTP server and
// the CLI) build one of these over the same store.
type Services struct {
	Identity   *service.IdentityStore
	Ledger     *service.SwapLedger
	Reputation *service.Reputation
	Sessions   *service.SessionService
	Tokens     *auth.TokenService
}

// NewServices builds the service graph on top of store.
//
// DEPENDENCY CHAIN:
//
//	store ─┬─▶ IdentityStore ─┬─▶ SessionService ◀── TokenService
//	       │                  │
//	       └─▶ SwapLedger ────┴─▶ Reputation
func NewServices(cfg *config.Config, store repository.Store, logger *slog.Logger) (*Services, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	identity := service.NewIdentityStore(store, cfg.AdminEmail, logger.With(slog.String("component", "identity")))
	ledger := service.NewSwapLedger(store, logger.With(slog.String("component", "ledger"))).
		WithObserver(metrics.SwapTransitions{})

	return &Services{
		Identity:   identity,
		Ledger:     ledger,
		Reputation: service.NewReputation(ledger, identity, cfg.ApplyRatings, logger.With(slog.String("component", "reputation"))).
			WithRatingObserver(metrics.Ratings{}),
		Sessions:   service.NewSessionService(identity, tokens, logger.With(slog.String("component", "session"))),
		Tokens:     tokens,
	}, nil
}
