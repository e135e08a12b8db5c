// Package service implements the snapshot store and the background refresher.
package service

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	cacheDomain "github.com/allisson/entitygate/internal/cache/domain"
)

// Store holds the currently published snapshot behind an atomic pointer.
//
// Reads are lock-free: a reader gets whatever snapshot is published at that
// instant and keeps using it even if a newer one is published mid-request,
// so no reader ever observes a partially-updated dataset. The refresher is
// the only writer; old snapshots are garbage collected once their last
// reader drops them.
type Store struct {
	snapshot    atomic.Pointer[cacheDomain.Snapshot]
	logger      *slog.Logger
	mu          sync.Mutex
	subscribers []func(*cacheDomain.Snapshot)
}

// NewStore creates an empty store. Read returns nil until the first Publish.
func NewStore(logger *slog.Logger) *Store {
	return &Store{logger: logger}
}

// Read returns the currently published snapshot, or nil when nothing has
// been published yet (degraded startup).
func (s *Store) Read() *cacheDomain.Snapshot {
	return s.snapshot.Load()
}

// Publish atomically replaces the published snapshot and notifies
// subscribers. Notification runs on separate goroutines and can never block
// or fail the publish path.
func (s *Store) Publish(snapshot *cacheDomain.Snapshot) {
	s.snapshot.Store(snapshot)

	s.mu.Lock()
	subscribers := make([]func(*cacheDomain.Snapshot), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, notify := range subscribers {
		go func(notify func(*cacheDomain.Snapshot)) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("snapshot subscriber panicked", slog.Any("panic", r))
				}
			}()
			notify(snapshot)
		}(notify)
	}
}

// Subscribe registers a callback fired on every publish. Intended for hosting
// layers that want to notify external watchers about cache changes.
func (s *Store) Subscribe(notify func(*cacheDomain.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, notify)
}

// IsStale reports whether the published snapshot is past its TTL at now.
// An empty store is always stale.
func (s *Store) IsStale(now time.Time) bool {
	snapshot := s.snapshot.Load()
	if snapshot == nil {
		return true
	}
	return snapshot.IsStale(now)
}
