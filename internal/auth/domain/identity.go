// Package domain defines identity and entitlement models for authorization.
//
// An identity assertion is the verified form of a caller-supplied bearer
// token. Entitlements are derived from it once per session and are read-only
// afterwards; every later access check evaluates against that resolved set.
package domain

import "time"

// IdentityAssertion is a verified bearer token plus its claims. It is never
// mutated after verification.
type IdentityAssertion struct {
	// Token is the raw token string the caller presented.
	Token string
	// SubjectID is the verified subject ("sub" claim).
	SubjectID string
	// Issuer is the verified issuer ("iss" claim), when present.
	Issuer string
	// ExpiresAt is the token expiry ("exp" claim).
	ExpiresAt time.Time
	// Claims holds the full verified claim set for entitlement resolution.
	Claims map[string]any
}
