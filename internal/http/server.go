// Package http provides the API server: one dispatch endpoint plus the
// public health probes, with authentication, rate limiting, CORS, and
// metrics applied as middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	actionDispatcher "github.com/actiongate/actiongate/internal/action/dispatcher"
	actionDomain "github.com/actiongate/actiongate/internal/action/domain"
	authHTTP "github.com/actiongate/actiongate/internal/auth/http"
	authService "github.com/actiongate/actiongate/internal/auth/service"
	authUseCase "github.com/actiongate/actiongate/internal/auth/usecase"
	"github.com/actiongate/actiongate/internal/config"
	apperrors "github.com/actiongate/actiongate/internal/errors"
	"github.com/actiongate/actiongate/internal/httputil"
	"github.com/actiongate/actiongate/internal/metrics"
)

// maxRequestBodyBytes bounds the dispatch request body. Oversized bodies are
// rejected before the dispatcher runs.
const maxRequestBodyBytes = 1 << 20 // 1 MiB

// Server is the API HTTP server. All actions enter through a single POST
// endpoint; the only other routes are the public health probes.
type Server struct {
	config              *config.Config
	db                  *sql.DB
	dispatcher          actionDispatcher.Dispatcher
	authenticateUseCase authUseCase.AuthenticateUseCase
	tokenService        authService.TokenService
	metricsProvider     *metrics.Provider
	logger              *slog.Logger
	router              *gin.Engine
	server              *http.Server
	rateLimitCancel     context.CancelFunc
}

// NewServer creates the API server. The metrics provider may be nil, in which
// case no request metrics are recorded.
func NewServer(
	cfg *config.Config,
	db *sql.DB,
	dispatcher actionDispatcher.Dispatcher,
	authenticateUseCase authUseCase.AuthenticateUseCase,
	tokenService authService.TokenService,
	metricsProvider *metrics.Provider,
	logger *slog.Logger,
) *Server {
	return &Server{
		config:              cfg,
		db:                  db,
		dispatcher:          dispatcher,
		authenticateUseCase: authenticateUseCase,
		tokenService:        tokenService,
		metricsProvider:     metricsProvider,
		logger:              logger,
	}
}

// SetupRouter builds the Gin engine with the full middleware chain and
// routes. Start calls it when needed; tests call it directly to exercise the
// router without listening on a socket.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(
		s.config.CORSEnabled,
		s.config.CORSAllowOrigins,
		s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if s.metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(
			s.metricsProvider.MeterProvider(),
			s.metricsProvider.Namespace(),
		))
	}

	// Wrong verbs on known routes answer with the method envelope instead of
	// Gin's default 404.
	router.HandleMethodNotAllowed = true
	router.NoMethod(s.methodNotAllowedHandler)
	router.NoRoute(s.notFoundHandler)

	// Public probes, no authentication.
	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	// The dispatch endpoint. Authentication always runs; rate limiting keys
	// on the authenticated credential so it runs after.
	actionRoutes := router.Group("/v1")
	actionRoutes.Use(authHTTP.AuthenticationMiddleware(
		s.authenticateUseCase,
		s.tokenService,
		s.logger,
	))
	if s.config.RateLimitEnabled {
		// The limiter's cleanup goroutine lives as long as the router; Shutdown
		// cancels it.
		limiterCtx, cancel := context.WithCancel(context.Background())
		s.rateLimitCancel = cancel
		actionRoutes.Use(authHTTP.RateLimitMiddleware(
			limiterCtx,
			s.config.RateLimitRequestsPerSec,
			s.config.RateLimitBurst,
			s.logger,
		))
	}
	actionRoutes.POST("/actions", s.dispatchHandler)

	s.router = router
	return router
}

// dispatchHandler translates an HTTP request into a dispatch and the dispatch
// result back into a response. All routing beyond this point happens on the
// action_type discriminator in the body, not the URL.
func (s *Server) dispatchHandler(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodyBytes))
	if err != nil {
		httputil.HandleErrorGin(
			c,
			apperrors.Wrap(apperrors.ErrInvalidInput, "failed to read request body"),
			s.logger,
		)
		return
	}

	credential, _ := authHTTP.GetCredential(c.Request.Context())

	request := &actionDomain.Request{
		RequestID:  requestid.Get(c),
		Credential: credential,
		Params:     body,
		StartedAt:  time.Now().UTC(),
	}

	ctx := c.Request.Context()
	if s.config.ActionExecuteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ActionExecuteTimeout)
		defer cancel()
	}

	result := s.dispatcher.Dispatch(ctx, request)
	c.JSON(result.HTTPStatus, result.Body)
}

// healthHandler reports liveness. It answers as long as the process serves
// requests, without touching any dependency.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports readiness to serve dispatches: the database must
// answer a ping. Load balancers use this to gate traffic.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	if s.db == nil {
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// methodNotAllowedHandler answers wrong verbs on known routes with the stable
// method envelope.
func (s *Server) methodNotAllowedHandler(c *gin.Context) {
	httputil.HandleErrorCodeGin(
		c,
		http.StatusMethodNotAllowed,
		httputil.CodeMethodNotAllowed,
		fmt.Sprintf("method %s not allowed: dispatch actions with POST", c.Request.Method),
		nil,
	)
}

// notFoundHandler answers unknown routes with the stable not-found envelope.
// Unknown action types inside the dispatch body are a different failure,
// reported by the dispatcher as ACTION_NOT_FOUND.
func (s *Server) notFoundHandler(c *gin.Context) {
	httputil.HandleErrorCodeGin(
		c,
		http.StatusNotFound,
		httputil.CodeNotFound,
		fmt.Sprintf("route %s not found", c.Request.URL.Path),
		nil,
	)
}

// Start starts the HTTP server. Blocks until the server stops; a graceful
// shutdown returns nil.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		s.SetupRouter()
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.ServerHost, s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting api server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start api server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server, letting in-flight
// dispatches finish within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rateLimitCancel != nil {
		s.rateLimitCancel()
	}
	if s.server == nil {
		return nil
	}
	s.logger.Info("shutting down api server")
	return s.server.Shutdown(ctx)
}
