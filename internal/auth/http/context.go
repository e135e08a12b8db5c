// Package http provides HTTP middleware and utilities for authentication.
package http

import (
	"context"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
)

// entitlementsKey is a context key type for storing resolved entitlements.
type entitlementsKey struct{}

// sessionIDKey is a context key type for storing the session id.
type sessionIDKey struct{}

// WithEntitlements stores resolved entitlements in the context.
// This is typically called by the authentication middleware after successful resolution.
func WithEntitlements(ctx context.Context, entitlements *authDomain.Entitlements) context.Context {
	return context.WithValue(ctx, entitlementsKey{}, entitlements)
}

// GetEntitlements retrieves resolved entitlements from the context.
// Returns (entitlements, true) if present, or (nil, false) if no entitlements were set.
func GetEntitlements(ctx context.Context) (*authDomain.Entitlements, bool) {
	entitlements, ok := ctx.Value(entitlementsKey{}).(*authDomain.Entitlements)
	return entitlements, ok
}

// WithSessionID stores the session id in the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

// GetSessionID retrieves the session id from the context.
// Returns (sessionID, true) if present, or ("", false) if not set.
func GetSessionID(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionIDKey{}).(string)
	return sessionID, ok
}
