// Package service provides identity verification, claims-to-entitlements
// resolution, and the session entitlement store.
package service

import (
	"context"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
)

// Verifier validates a caller-supplied token string and returns the verified
// identity assertion. Verification trust (signatures, key material) comes
// from an external identity provider; this service never mints identities.
type Verifier interface {
	// Verify returns the verified assertion, or an error wrapping
	// domain.ErrVerification when the token is invalid or expired.
	Verify(ctx context.Context, token string) (*authDomain.IdentityAssertion, error)
}

// Resolver maps a verified identity assertion to entitlements.
//
// The mapping must be total and deterministic over the claim schema it
// supports: the same assertion always yields the same entitlements, and
// hierarchical role expansion happens here, once, never inside permission
// checks.
type Resolver interface {
	// Resolve returns entitlements, or an error wrapping domain.ErrMapping
	// when required claims are missing or have the wrong shape.
	Resolve(assertion *authDomain.IdentityAssertion) (*authDomain.Entitlements, error)

	// Hierarchy exposes the declared role hierarchy for inspection.
	Hierarchy() map[string][]string
}
