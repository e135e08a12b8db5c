// Package http provides HTTP handlers for capability listing and invocation.
package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/entitygate/internal/auth/http"
	"github.com/allisson/entitygate/internal/capability/http/dto"
	capabilityUseCase "github.com/allisson/entitygate/internal/capability/usecase"
	apperrors "github.com/allisson/entitygate/internal/errors"
	"github.com/allisson/entitygate/internal/httputil"
	customValidation "github.com/allisson/entitygate/internal/validation"
)

// CapabilityHandler handles HTTP requests for capability operations.
type CapabilityHandler struct {
	useCase capabilityUseCase.CapabilityUseCase
	logger  *slog.Logger
}

// NewCapabilityHandler creates a new capability handler with required dependencies.
func NewCapabilityHandler(useCase capabilityUseCase.CapabilityUseCase, logger *slog.Logger) *CapabilityHandler {
	return &CapabilityHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// ListHandler lists the capabilities visible to the caller.
// GET /v1/capabilities - Requires authentication.
// Returns 200 OK with the visible capability set.
func (h *CapabilityHandler) ListHandler(c *gin.Context) {
	entitlements, ok := authHTTP.GetEntitlements(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	views, err := h.useCase.ListVisible(c.Request.Context(), entitlements)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapViewsToListResponse(views))
}

// InvokeHandler invokes a capability by name.
// POST /v1/capabilities/:name/invoke - Requires authentication.
// Returns 200 OK with the invocation result. Capabilities the caller may not
// see respond 404, the same as capabilities that do not exist.
func (h *CapabilityHandler) InvokeHandler(c *gin.Context) {
	entitlements, ok := authHTTP.GetEntitlements(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	name := c.Param("name")
	if err := customValidation.CapabilityName.Validate(name); err != nil || name == "" {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(
			errors.New("capability name must contain only lowercase letters, digits and underscores"),
		), h.logger)
		return
	}

	var req dto.InvokeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		// An empty body means an argument-less invocation.
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.useCase.Invoke(c.Request.Context(), name, req.Arguments, entitlements)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapResultToInvokeResponse(name, result))
}
