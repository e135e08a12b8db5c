package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"

	authHTTP "github.com/allisson/entitygate/internal/auth/http"
	authUseCase "github.com/allisson/entitygate/internal/auth/usecase"
	cacheHTTP "github.com/allisson/entitygate/internal/cache/http"
	cacheUseCase "github.com/allisson/entitygate/internal/cache/usecase"
	capabilityHTTP "github.com/allisson/entitygate/internal/capability/http"
	"github.com/allisson/entitygate/internal/config"
	"github.com/allisson/entitygate/internal/metrics"
)

// RouterDeps carries everything the router wires together.
type RouterDeps struct {
	AuthUseCase       authUseCase.AuthUseCase
	CapabilityHandler *capabilityHTTP.CapabilityHandler
	CacheHandler      *cacheHTTP.CacheHandler
	CacheUseCase      cacheUseCase.UseCase
	MeterProvider     metric.MeterProvider
}

// SetupRouter builds the gin engine with middleware and all routes.
//
// The route surface:
//
//	GET  /health                          liveness probe, always 200
//	GET  /ready                           readiness probe, 503 until a snapshot is published
//	GET  /v1/cache/health                 cache serving state, public
//	GET  /v1/capabilities                 visible capability listing, authenticated
//	POST /v1/capabilities/:name/invoke    capability invocation, authenticated
//	GET  /v1/cache/summary                snapshot summary, authenticated and role-gated
func SetupRouter(cfg *config.Config, logger *slog.Logger, deps RouterDeps) *gin.Engine {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if deps.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(deps.MeterProvider, cfg.MetricsNamespace))
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	// Probes
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		if deps.CacheUseCase.Health(c.Request.Context()).Status == cacheUseCase.StatusUnavailable {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Cache serving state, public so probes and dashboards can watch it.
	router.GET("/v1/cache/health", deps.CacheHandler.HealthHandler)

	// Authenticated API
	api := router.Group("/v1")
	api.Use(authHTTP.AuthenticationMiddleware(deps.AuthUseCase, logger))
	if cfg.RateLimitEnabled {
		api.Use(authHTTP.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, logger))
	}

	api.GET("/capabilities", deps.CapabilityHandler.ListHandler)
	api.POST("/capabilities/:name/invoke", deps.CapabilityHandler.InvokeHandler)
	api.GET("/cache/summary", deps.CacheHandler.SummaryHandler)

	return router
}

// Server represents the HTTP server.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a new HTTP server around the given handler.
func NewServer(host string, port int, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
