// Package http provides HTTP handlers for cache introspection.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
	authHTTP "github.com/allisson/entitygate/internal/auth/http"
	cacheUseCase "github.com/allisson/entitygate/internal/cache/usecase"
	apperrors "github.com/allisson/entitygate/internal/errors"
	"github.com/allisson/entitygate/internal/httputil"
)

// AccessGate is the global-access check the summary endpoint runs before
// disclosing anything about the cached dataset.
type AccessGate interface {
	CheckGlobalAccess(ctx context.Context, entitlements *authDomain.Entitlements) error
}

// CacheHandler handles HTTP requests for cache summary and health endpoints.
type CacheHandler struct {
	useCase cacheUseCase.UseCase
	gate    AccessGate
	logger  *slog.Logger
}

// NewCacheHandler creates a new cache handler with required dependencies.
func NewCacheHandler(useCase cacheUseCase.UseCase, gate AccessGate, logger *slog.Logger) *CacheHandler {
	return &CacheHandler{
		useCase: useCase,
		gate:    gate,
		logger:  logger,
	}
}

// SummaryHandler describes the published snapshot.
// GET /v1/cache/summary - Requires authentication and the minimum global
// roles; counts and categories reveal dataset shape, so callers below the
// minimum get 403.
// Returns 200 OK with counts, categories and freshness, or 503 before the
// first successful refresh.
func (h *CacheHandler) SummaryHandler(c *gin.Context) {
	entitlements, ok := authHTTP.GetEntitlements(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if err := h.gate.CheckGlobalAccess(c.Request.Context(), entitlements); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	summary, err := h.useCase.Summary(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// HealthHandler reports the cache serving state.
// GET /v1/cache/health - Public; used by probes.
// Returns 200 OK while a snapshot is published (fresh or stale) and
// 503 Service Unavailable before the first successful refresh.
func (h *CacheHandler) HealthHandler(c *gin.Context) {
	health := h.useCase.Health(c.Request.Context())

	status := http.StatusOK
	if health.Status == cacheUseCase.StatusUnavailable {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, health)
}
