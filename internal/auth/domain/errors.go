package domain

import "errors"

var (
	// ErrVerification indicates the identity assertion is invalid or expired.
	// Fatal to the presenting session only.
	ErrVerification = errors.New("identity verification failed")

	// ErrMapping indicates verified claims could not be normalized into
	// entitlements. This is a schema mismatch between the identity provider
	// and this service, not a caller mistake, and should be loud.
	ErrMapping = errors.New("claims mapping failed")
)
