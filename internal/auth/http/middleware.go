package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
	authUseCase "github.com/allisson/entitygate/internal/auth/usecase"
	apperrors "github.com/allisson/entitygate/internal/errors"
	"github.com/allisson/entitygate/internal/httputil"
)

// AuthenticationMiddleware provides authentication via Bearer token in the Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Authenticates and resolves entitlements via authUseCase.Authenticate()
// 3. Stores the resolved entitlements and session id in the request context
// 4. Allows downstream handlers to access them via GetEntitlements() and GetSessionID()
//
// Authorization header format: "Bearer <token>" (case-insensitive "bearer")
//
// Error handling:
//   - Missing Authorization header → 401 Unauthorized
//   - Malformed Authorization header → 401 Unauthorized
//   - Invalid/expired token → 401 Unauthorized
//   - Claims mapping failure → 500 Internal Server Error
func AuthenticationMiddleware(useCase authUseCase.AuthUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		token := authHeader[len(bearerPrefix):]
		if token == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		entitlements, err := useCase.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.Debug("authentication failed",
				slog.String("error", err.Error()))
			// Verification failures are the caller's problem; mapping
			// failures are ours and surface as internal errors.
			if apperrors.Is(err, authDomain.ErrVerification) {
				err = apperrors.Wrap(apperrors.ErrUnauthorized, err.Error())
			}
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithEntitlements(c.Request.Context(), entitlements)
		ctx = WithSessionID(ctx, authUseCase.SessionID(token))
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("subject_id", entitlements.SubjectID))

		c.Next()
	}
}
