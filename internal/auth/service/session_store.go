package service

import (
	"log/slog"
	"sync"
	"time"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
)

// SessionStore keeps resolved entitlements keyed by session id so repeated
// requests on the same session skip verification and resolution. Expired
// records are indistinguishable from absent ones: Get removes them on sight
// and a background sweeper removes the ones nobody asks for.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*authDomain.SessionRecord
	logger   *slog.Logger
	now      func() time.Time

	sweepInterval time.Duration
	running       bool
	stopCh        chan struct{}
	doneCh        chan struct{}
	startOnce     sync.Once
	stopOnce      sync.Once
}

// NewSessionStore returns an empty store sweeping at the given interval once
// Start is called.
func NewSessionStore(sweepInterval time.Duration, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		sessions:      make(map[string]*authDomain.SessionRecord),
		logger:        logger,
		now:           time.Now,
		sweepInterval: sweepInterval,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Get returns the record for the session id, or nil when it is absent or
// expired. Expired records are deleted before returning. A hit updates
// LastAccessedAt, so the whole lookup runs under the write lock.
func (s *SessionStore) Get(sessionID string) *authDomain.SessionRecord {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}

	if record.Entitlements.IsExpired(now) {
		delete(s.sessions, sessionID)
		return nil
	}

	record.LastAccessedAt = now
	return record
}

// Put stores the resolved entitlements for the session id. Concurrent puts
// for the same id are last-write-wins; both writes carry equivalent
// entitlements for the same token, so either result is valid.
func (s *SessionStore) Put(sessionID string, entitlements *authDomain.Entitlements) {
	record := &authDomain.SessionRecord{
		SessionID:      sessionID,
		Entitlements:   entitlements,
		LastAccessedAt: s.now(),
	}

	s.mu.Lock()
	s.sessions[sessionID] = record
	s.mu.Unlock()
}

// Invalidate removes the session record if present.
func (s *SessionStore) Invalidate(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Len returns the number of stored records, expired ones included until the
// next sweep.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Start launches the background sweeper. Safe to call once; a zero or
// negative sweep interval disables sweeping entirely.
func (s *SessionStore) Start() {
	s.startOnce.Do(func() {
		if s.sweepInterval <= 0 {
			return
		}
		s.running = true
		go s.run()
	})
}

// Stop halts the sweeper and waits for it to exit. A no-op when the sweeper
// never ran.
func (s *SessionStore) Stop() {
	if !s.running {
		return
	}
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	<-s.doneCh
}

func (s *SessionStore) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *SessionStore) sweep() {
	now := s.now()
	removed := 0

	s.mu.Lock()
	for sessionID, record := range s.sessions {
		if record.Entitlements.IsExpired(now) {
			delete(s.sessions, sessionID)
			removed++
		}
	}
	remaining := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Debug("swept expired sessions", "removed", removed, "remaining", remaining)
	}
}
