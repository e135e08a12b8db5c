package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
	apperrors "github.com/allisson/entitygate/internal/errors"
)

// authUseCase implements AuthUseCase using a verifier, a resolver, and a
// session store.
type authUseCase struct {
	verifier TokenVerifier
	resolver EntitlementResolver
	sessions SessionStore
	logger   *slog.Logger
}

// NewAuthUseCase creates a new AuthUseCase with the provided dependencies.
func NewAuthUseCase(
	verifier TokenVerifier,
	resolver EntitlementResolver,
	sessions SessionStore,
	logger *slog.Logger,
) AuthUseCase {
	return &authUseCase{
		verifier: verifier,
		resolver: resolver,
		sessions: sessions,
		logger:   logger,
	}
}

// SessionID derives the session id for a bearer token. The raw token never
// serves as a map key or appears in logs.
func SessionID(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (a *authUseCase) Authenticate(ctx context.Context, token string) (*authDomain.Entitlements, error) {
	if token == "" {
		return nil, apperrors.Wrap(authDomain.ErrVerification, "empty token")
	}

	sessionID := SessionID(token)

	if record := a.sessions.Get(sessionID); record != nil {
		return record.Entitlements, nil
	}

	assertion, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return nil, apperrors.Wrap(err, "token verification failed")
	}

	entitlements, err := a.resolver.Resolve(assertion)
	if err != nil {
		// A mapping failure means the identity provider and this service
		// disagree on the claim schema. Operators need to see it.
		a.logger.Error("entitlement resolution failed",
			"subject_id", assertion.SubjectID,
			"issuer", assertion.Issuer,
			"error", err,
		)
		return nil, apperrors.Wrap(err, "entitlement resolution failed")
	}

	a.sessions.Put(sessionID, entitlements)

	a.logger.Info("session entitlements resolved",
		"subject_id", entitlements.SubjectID,
		"roles", entitlements.GlobalRoles,
		"expires_at", entitlements.ExpiresAt,
	)

	return entitlements, nil
}

func (a *authUseCase) InvalidateSession(token string) {
	a.sessions.Invalidate(SessionID(token))
}
