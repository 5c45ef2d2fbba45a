// Package server wires middleware, routes, and handlers into an http.Server.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/handlers"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// Routes builds the full handler chain. Exposed separately from New so tests
// can drive the API through httptest.
func Routes(cfg config.Config, store storage.Store) http.Handler {
	mux := http.NewServeMux()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	requireAuth := middleware.RequireAuth(jwtManager)

	handlers.NewAuthHandler(authenticator, jwtManager, store).Register(mux, requireAuth)
	handlers.NewExpenseHandler(store).Register(mux, requireAuth)
	handlers.NewBalanceHandler(store).Register(mux, requireAuth)

	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.CORS(middleware.Logging(middleware.Metrics(mux)))
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Routes(cfg, store),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
