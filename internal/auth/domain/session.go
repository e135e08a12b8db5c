package domain

import "time"

// SessionRecord associates a session with its resolved entitlements. Owned
// exclusively by the session store; one record per session.
type SessionRecord struct {
	SessionID      string
	Entitlements   *Entitlements
	LastAccessedAt time.Time
}
