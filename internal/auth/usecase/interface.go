// Package usecase defines business logic interfaces for authentication and
// entitlement resolution.
package usecase

import (
	"context"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
)

// TokenVerifier validates a bearer token and returns the verified identity
// assertion.
type TokenVerifier interface {
	// Verify returns the verified assertion, or an error wrapping
	// domain.ErrVerification when the token is invalid or expired.
	Verify(ctx context.Context, token string) (*authDomain.IdentityAssertion, error)
}

// EntitlementResolver maps a verified identity assertion to entitlements.
type EntitlementResolver interface {
	// Resolve returns entitlements, or an error wrapping domain.ErrMapping
	// when required claims are missing or have the wrong shape.
	Resolve(assertion *authDomain.IdentityAssertion) (*authDomain.Entitlements, error)
}

// SessionStore keeps resolved entitlements keyed by session id.
type SessionStore interface {
	// Get returns the record for the session id, or nil when it is absent
	// or expired.
	Get(sessionID string) *authDomain.SessionRecord

	// Put stores the resolved entitlements for the session id.
	Put(sessionID string, entitlements *authDomain.Entitlements)

	// Invalidate removes the session record if present.
	Invalidate(sessionID string)
}

// AuthUseCase authenticates bearer tokens and returns the caller's resolved
// entitlements, reusing session state when possible.
type AuthUseCase interface {
	// Authenticate verifies the token, resolves entitlements, and caches
	// them under the token's session id. Repeated calls with the same token
	// hit the session store until the entitlements expire.
	//
	// Returns an error wrapping domain.ErrVerification for invalid tokens
	// and domain.ErrMapping when claims cannot be normalized.
	Authenticate(ctx context.Context, token string) (*authDomain.Entitlements, error)

	// InvalidateSession drops the cached entitlements for the token, forcing
	// the next request to verify and resolve again.
	InvalidateSession(token string)
}
