package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobsniper/internal/agents"
	"jobsniper/internal/ai"
	"jobsniper/internal/history"
	"jobsniper/internal/observability"
)

// Start starts the HTTP server with all configured components
func (s *Server) Start() error {
	om, err := s.initializeObservability()
	if err != nil {
		return err
	}
	defer s.shutdownObservability(om)

	if err := s.initializePipeline(om); err != nil {
		return err
	}
	defer s.closePipeline()

	httpServer := s.setupHTTPServer(om)

	if err := s.configureTLS(httpServer, om); err != nil {
		return err
	}

	return s.startWithGracefulShutdown(httpServer)
}

// initializeObservability sets up observability components
func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	obsConfig := observability.GetObservabilityConfig(s.AppConfig, s.Version)

	om, err := observability.NewObservabilityManager(obsConfig, s.AppConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	return om, nil
}

// shutdownObservability handles observability cleanup
func (s *Server) shutdownObservability(om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// initializePipeline builds the provider chain, the router, the agent
// controller, and the history store
func (s *Server) initializePipeline(om *observability.ObservabilityManager) error {
	providers := ai.BuildProviders(s.AppConfig, s.Logger)
	s.Router = ai.NewRouter(providers, s.AppConfig.AI.Timeout, s.Logger, om.GetMetrics())
	s.Controller = agents.NewController(s.Router, s.AppConfig.AI.Prompts, s.Logger, om.GetMetrics())

	for name, available := range s.Router.Health() {
		s.Logger.Info("Provider configured", "provider", name, "available", available)
	}

	if s.AppConfig.History.Enabled && s.AppConfig.Features["history"] {
		store, err := history.NewStore(s.AppConfig.History.Path, s.Logger)
		if err != nil {
			return fmt.Errorf("failed to open analysis history: %w", err)
		}
		s.History = store
		s.pruneHistory()
	}

	return nil
}

// pruneHistory applies the configured retention window. A prune failure
// is logged and does not block startup.
func (s *Server) pruneHistory() {
	retention := s.AppConfig.History.Retention
	if retention <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.History.Cleanup(ctx, retention); err != nil {
		s.Logger.LogError(err, "Failed to prune analysis history")
		return
	}
	s.Logger.Info("Pruned analysis history", "retention", retention.String())
}

// closePipeline releases provider and storage resources
func (s *Server) closePipeline() {
	if s.Router != nil {
		if err := s.Router.Close(); err != nil {
			s.Logger.LogError(err, "Failed to close provider chain")
		}
	}
	if s.History != nil {
		if err := s.History.Close(); err != nil {
			s.Logger.LogError(err, "Failed to close analysis history")
		}
	}
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) *http.Server {
	mux := s.setupRoutes(om)
	handler := om.HTTPMiddleware()(mux)
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(server *http.Server) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			if server.TLSConfig.GetCertificate != nil {
				// Certificates come from the reloader, not from files
				err = server.ListenAndServeTLS("", "")
			} else {
				err = server.ListenAndServeTLS(s.TLSConfig.CertFile, s.TLSConfig.KeyFile)
			}
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Received shutdown signal, starting graceful shutdown",
			"signal", sig.String())

		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.CertReloader != nil {
		if err := s.CertReloader.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop certificate reloader")
		}
	}

	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}
