package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"atlashq/meridian/pkg/config"
	"atlashq/meridian/pkg/policy/engine"
	"atlashq/meridian/pkg/policy/store"
	"atlashq/meridian/pkg/server/handlers"
	"atlashq/meridian/pkg/server/middleware"
	"atlashq/meridian/pkg/telemetry/metrics"
)

// Server is the Meridian HTTP API server.
type Server struct {
	config        *config.ServerConfig
	metricsConfig *config.MetricsConfig
	store         store.Store
	evaluator     *engine.Evaluator
	collector     *metrics.Collector
	httpServer    *http.Server
	shutdownChan  chan struct{}
	shutdownOnce  sync.Once
	mu            sync.RWMutex
	isRunning     bool
}

// NewServer creates a new API server.
func NewServer(cfg *config.ServerConfig, metricsCfg *config.MetricsConfig, st store.Store, evaluator *engine.Evaluator, collector *metrics.Collector) *Server {
	return &Server{
		config:        cfg,
		metricsConfig: metricsCfg,
		store:         st,
		evaluator:     evaluator,
		collector:     collector,
		shutdownChan:  make(chan struct{}),
		isRunning:     false,
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	// Create router with middleware chain
	handler := s.setupRoutes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting API server",
			"address", s.config.ListenAddress,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Set up signal handlers
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("API server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Create handlers
	versionsHandler := handlers.NewVersionsHandler(s.store, s.collector, nil)
	auditHandler := handlers.NewAuditHandler(s.store, nil)
	simulateHandler := handlers.NewSimulateHandler(s.store, s.evaluator, s.collector, nil)
	healthHandler := handlers.NewHealthHandler()
	readyHandler := handlers.NewReadyHandler(s.store)

	// Register routes
	mux.HandleFunc("GET /v1/policy/versions", versionsHandler.List)
	mux.HandleFunc("GET /v1/policy/versions/active", versionsHandler.Active)
	mux.HandleFunc("GET /v1/policy/versions/{id}", versionsHandler.Get)
	mux.HandleFunc("POST /v1/policy/versions", versionsHandler.Create)
	mux.HandleFunc("POST /v1/policy/versions/{id}/activate", versionsHandler.Activate)
	mux.Handle("GET /v1/policy/audit", auditHandler)
	mux.Handle("POST /v1/simulate", simulateHandler)
	mux.Handle("GET /health", healthHandler)
	mux.Handle("GET /ready", readyHandler)

	if s.metricsConfig != nil && s.metricsConfig.Enabled && s.collector != nil {
		mux.Handle("GET "+s.metricsConfig.Path, s.collector.Handler())
	}

	// Apply middleware chain
	var handler http.Handler = mux

	if s.collector != nil {
		handler = middleware.MetricsMiddleware(s.collector, mux)(handler)
	}

	// Request ID middleware
	handler = middleware.RequestIDMiddleware(handler)

	// Logging middleware
	handler = middleware.LoggingMiddleware(handler)

	// Recovery middleware (outermost)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
