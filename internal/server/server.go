// Package server wires storage, handlers and middleware into a running
// HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/kosyncd/internal/config"
	"github.com/iudanet/kosyncd/internal/server/handlers"
	"github.com/iudanet/kosyncd/internal/server/middleware"
	"github.com/iudanet/kosyncd/internal/server/storage"
)

// Server is the assembled HTTP server
type Server struct {
	logger    *slog.Logger
	cfg       *config.Config
	store     storage.Storage
	jwtConfig handlers.JWTConfig
	limiter   *middleware.RateLimiter
}

// New assembles a server from its dependencies. The storage handle is owned
// by the caller; Run does not close it.
func New(logger *slog.Logger, cfg *config.Config, store storage.Storage, jwtConfig handlers.JWTConfig) *Server {
	return &Server{
		logger:    logger,
		cfg:       cfg,
		store:     store,
		jwtConfig: jwtConfig,
		limiter:   middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, logger),
	}
}

// Handler builds the route table and middleware chain
func (s *Server) Handler() http.Handler {
	authHandler := handlers.NewAuthHandler(s.logger, s.store, s.jwtConfig)
	progressHandler := handlers.NewProgressHandler(s.logger, s.store)
	annotationsHandler := handlers.NewAnnotationsHandler(s.logger, s.store)
	healthHandler := handlers.NewHealthHandler(s.logger)

	auth := middleware.Auth(s.logger, s.store, s.jwtConfig)

	mux := http.NewServeMux()

	// Account endpoints
	mux.HandleFunc("POST /users/create", authHandler.CreateUser)
	mux.Handle("GET /users/auth", auth(http.HandlerFunc(authHandler.CheckAuth)))
	mux.HandleFunc("POST /users/login", authHandler.Login)

	// Reading progress (legacy sync API)
	mux.Handle("PUT /syncs/progress", auth(http.HandlerFunc(progressHandler.Update)))
	mux.Handle("GET /syncs/progress/{document}", auth(http.HandlerFunc(progressHandler.Get)))

	// Versioned annotations (extended sync API)
	mux.Handle("GET /syncs/annotations/{document}", auth(http.HandlerFunc(annotationsHandler.Get)))
	mux.Handle("PUT /syncs/annotations/{document}", auth(http.HandlerFunc(annotationsHandler.Update)))

	mux.HandleFunc("GET /healthcheck", healthHandler.Health)

	// Outermost first: correlation id, access log, rate limit, recovery.
	var handler http.Handler = mux
	handler = middleware.Recovery(s.logger)(handler)
	handler = s.limiter.Middleware(handler)
	handler = middleware.LoggingWithSkip(s.logger, []string{"/healthcheck"})(handler)
	handler = middleware.RequestID()(handler)

	return handler
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr, "backend", s.cfg.DBBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	select {
	case err := <-errC:
		s.limiter.Stop()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	s.limiter.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}
