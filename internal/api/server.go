package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/symfx/internal/metrics"
	"github.com/wonny/symfx/pkg/config"
	"github.com/wonny/symfx/pkg/logger"
)

// Server represents the desk HTTP server plus the optional metrics listener
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer    *http.Server
	metricsServer *http.Server
	logger        *logger.Logger
	config        *config.Config
}

// New creates a new API server
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	s := &Server{
		httpServer: &http.Server{
			Addr:        ":" + cfg.Port,
			Handler:     router,
			ReadTimeout: 15 * time.Second,
			// no WriteTimeout: /ws connections are long-lived
			IdleTimeout: 60 * time.Second,
		},
		logger: log.Component("api"),
		config: cfg,
	}

	if cfg.MetricsEnabled {
		metrics.Register()
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		s.metricsServer = &http.Server{
			Addr:              ":" + cfg.MetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return s
}

// Start serves until Shutdown; it blocks
func (s *Server) Start() error {
	if s.metricsServer != nil {
		go func() {
			s.logger.WithField("port", s.config.MetricsPort).Info("Starting metrics server")
			if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	s.logger.WithFields(map[string]interface{}{
		"port": s.config.Port,
		"env":  s.config.Env,
	}).Info("Starting desk server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down both listeners
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down desk server")

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			s.logger.WithError(err).Warn("Metrics server shutdown")
		}
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
