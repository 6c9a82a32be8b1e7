package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/actiongate/actiongate/internal/metrics"
)

// MetricsServer serves the Prometheus scrape endpoint on its own port. The
// API server never exposes /metrics; keeping the scrape surface separate
// means the dispatch endpoint's auth rules never apply to it.
type MetricsServer struct {
	addr   string
	router *gin.Engine
	server *http.Server
	logger *slog.Logger
}

// NewMetricsServer creates the metrics server. A nil provider yields a
// server without the /metrics route, which only answers 404s.
func NewMetricsServer(
	host string,
	port int,
	logger *slog.Logger,
	metricsProvider *metrics.Provider,
) *MetricsServer {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(logger))

	if metricsProvider != nil {
		router.GET("/metrics", gin.WrapH(metricsProvider.Handler()))
	} else {
		logger.Warn("metrics provider is not configured, /metrics route not registered")
	}

	return &MetricsServer{
		addr:   fmt.Sprintf("%s:%d", host, port),
		router: router,
		logger: logger,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.router
}

// Start starts the metrics server. Blocks until the server stops; a
// graceful shutdown returns nil.
func (s *MetricsServer) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting metrics server", slog.String("addr", s.addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the metrics server. Safe to call when the
// server was never started.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("shutting down metrics server")
	return s.server.Shutdown(ctx)
}
