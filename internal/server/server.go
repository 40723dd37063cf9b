// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer: it connects the store, services,
// handlers, middleware, and routes. It decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go creates:
//
//	config.Load() → Config → server.New
//	server.New creates: Store → Services → Handlers → routes
//
// This is the "composition root" pattern: all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/skillswap/internal/auth"
	"github.com/sakif/skillswap/internal/config"
	"github.com/sakif/skillswap/internal/handler"
	"github.com/sakif/skillswap/internal/metrics"
	"github.com/sakif/skillswap/internal/middleware"
	"github.com/sakif/skillswap/internal/repository"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the store. When the server shuts down, we must close it
// to flush pending writes and release file locks (bolt holds an exclusive
// one). This is handled in Start() during graceful shutdown.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	store    repository.Store
	services *Services
}

// New opens the configured store and builds a Server on it.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store, err)
	}

	s, err := NewWithStore(cfg, store, logger)
	if err != nil {
		store.Close() // Clean up the store if wiring fails
		return nil, err
	}
	return s, nil
}

// NewWithStore builds a Server on an already-open store. The Server takes
// ownership and closes it when Start returns.
// Tests use it with an in-memory store.
func NewWithStore(cfg *config.Config, store repository.Store, logger *slog.Logger) (*Server, error) {
	services, err := NewServices(cfg, store, logger)
	if err != nil {
		return nil, fmt.Errorf("wiring services: %w", err)
	}
	if cfg.DefaultSecretExposed() {
		logger.Warn("signing session stamps with the built-in secret on a non-loopback host; set SKILLSWAP_JWT_SECRET",
			slog.String("host", cfg.Host),
		)
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		store:    store,
		services: services,
	}
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz                      → liveness + store reachability
// GET    /metrics                      → Prometheus
// POST   /api/session                  → log in
// DELETE /api/session                  → log out
// GET    /api/users[/{id}]             → directory          (optional auth)
// GET    /api/candidates[/filters]     → discovery          (optional auth)
// GET    /api/me, PUT /api/me          → own profile        (auth)
// GET    /api/me/dashboard             → own summary        (auth)
// POST   /api/me/skills/{kind}         → add skill          (auth)
// DELETE /api/me/skills/{kind}/{id}    → remove skill       (auth)
// GET    /api/swaps, POST /api/swaps   → boxes, propose     (auth)
// POST   /api/swaps/{id}/{action}      → lifecycle          (auth)
// DELETE /api/swaps/{id}               → cancel             (auth)
// GET    /api/admin/stats              → overview           (auth, admin)
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns unique ID to each request (for tracing)
// 2. RealIP: extracts real client IP from proxy headers
// 3. Recoverer: catches panics and returns 500 instead of crashing
// 4. Logger: logs each request with timing info
// 5. Metrics: counts requests per route pattern
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", metrics.Handler())

	svc := s.services
	sessionHandler := handler.NewSessionHandler(svc.Sessions, svc.Tokens, s.logger)
	profileHandler := handler.NewProfileHandler(svc.Sessions, svc.Identity, svc.Ledger, s.logger)
	userHandler := handler.NewUserHandler(svc.Identity, s.logger)
	swapHandler := handler.NewSwapHandler(svc.Ledger, svc.Reputation, svc.Identity, s.logger)
	adminHandler := handler.NewAdminHandler(svc.Identity, svc.Ledger, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/session", sessionHandler.HandleLogin)
		r.Delete("/session", sessionHandler.HandleLogout)

		// Public routes: anonymous callers allowed, stamp used when present.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(svc.Tokens))
			r.Get("/users", userHandler.HandleList)
			r.Get("/users/{id}", userHandler.HandleGet)
			r.Get("/candidates", userHandler.HandleCandidates)
			r.Get("/candidates/filters", userHandler.HandleFilters)
		})

		// Protected routes: 401 without a valid stamp.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(svc.Tokens))

			r.Get("/me", profileHandler.HandleMe)
			r.Put("/me", profileHandler.HandleUpdate)
			r.Get("/me/dashboard", profileHandler.HandleDashboard)
			r.Post("/me/skills/{kind}", profileHandler.HandleAddSkill)
			r.Delete("/me/skills/{kind}/{id}", profileHandler.HandleRemoveSkill)

			r.Get("/swaps", swapHandler.HandleList)
			r.Post("/swaps", swapHandler.HandleCreate)
			r.Post("/swaps/{id}/accept", swapHandler.HandleAccept)
			r.Post("/swaps/{id}/reject", swapHandler.HandleReject)
			r.Post("/swaps/{id}/complete", swapHandler.HandleComplete)
			r.Post("/swaps/{id}/rating", swapHandler.HandleRate)
			r.Delete("/swaps/{id}", swapHandler.HandleCancel)

			r.Get("/admin/stats", adminHandler.HandleStats)
		})
	})
}

// handleHealth reports whether the store answers a read.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if _, _, err := s.store.Load(ctx, repository.KeyCurrentUser); err != nil {
		s.logger.Warn("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the store (flushes WAL, releases file locks, closes Redis pool)
//
// The `defer s.store.Close()` ensures step 3 happens on every return path.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("addr", s.config.Addr()),
			slog.String("url", fmt.Sprintf("http://%s", s.config.Addr())),
			slog.String("store", s.config.Store),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
