// Package usecase implements the read-side cache operations served to
// handlers and capabilities: snapshot access, forced refresh, summary and
// health introspection.
package usecase

import (
	"context"
	"time"

	cacheDomain "github.com/allisson/entitygate/internal/cache/domain"
	apperrors "github.com/allisson/entitygate/internal/errors"
)

// SnapshotStore is the published-snapshot read surface consumed by this use case.
type SnapshotStore interface {
	Read() *cacheDomain.Snapshot
	IsStale(now time.Time) bool
}

// Refresher triggers an immediate fetch-and-publish cycle.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// UseCase exposes cache read operations.
type UseCase interface {
	// Snapshot returns the currently published snapshot, or ErrUnavailable
	// when nothing has been published yet (degraded startup).
	Snapshot(ctx context.Context) (*cacheDomain.Snapshot, error)

	// Refresh forces an immediate refresh and returns the entity count of the
	// published snapshot. Concurrent refreshes coalesce.
	Refresh(ctx context.Context) (int, error)

	// Summary describes the published snapshot: counts, categories, freshness.
	Summary(ctx context.Context) (*Summary, error)

	// Health reports the cache serving state. It never fails; probes use it.
	Health(ctx context.Context) Health
}

// Summary describes the published snapshot.
type Summary struct {
	TotalEntities int       `json:"total_entities"`
	Categories    []string  `json:"categories"`
	FetchedAt     time.Time `json:"fetched_at"`
	TTLSeconds    int       `json:"ttl_seconds"`
	Stale         bool      `json:"stale"`
}

// Cache serving states.
const (
	StatusHealthy     = "healthy"
	StatusStale       = "stale"
	StatusUnavailable = "unavailable"
)

// Health reports the cache serving state for probes.
type Health struct {
	Status      string     `json:"status"`
	LastRefresh *time.Time `json:"last_refresh,omitempty"`
}

type cacheUseCase struct {
	store     SnapshotStore
	refresher Refresher
	now       func() time.Time
}

// NewCacheUseCase creates the cache use case.
func NewCacheUseCase(store SnapshotStore, refresher Refresher) UseCase {
	return &cacheUseCase{
		store:     store,
		refresher: refresher,
		now:       time.Now,
	}
}

func (u *cacheUseCase) Snapshot(ctx context.Context) (*cacheDomain.Snapshot, error) {
	snapshot := u.store.Read()
	if snapshot == nil {
		return nil, apperrors.Wrap(apperrors.ErrUnavailable, "no snapshot published")
	}
	return snapshot, nil
}

func (u *cacheUseCase) Refresh(ctx context.Context) (int, error) {
	return u.refresher.Refresh(ctx)
}

func (u *cacheUseCase) Summary(ctx context.Context) (*Summary, error) {
	snapshot, err := u.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalEntities: snapshot.Len(),
		Categories:    snapshot.Categories(),
		FetchedAt:     snapshot.FetchedAt(),
		TTLSeconds:    int(snapshot.TTL() / time.Second),
		Stale:         snapshot.IsStale(u.now()),
	}, nil
}

func (u *cacheUseCase) Health(ctx context.Context) Health {
	snapshot := u.store.Read()
	if snapshot == nil {
		return Health{Status: StatusUnavailable}
	}

	fetchedAt := snapshot.FetchedAt()
	status := StatusHealthy
	if snapshot.IsStale(u.now()) {
		status = StatusStale
	}

	return Health{Status: status, LastRefresh: &fetchedAt}
}
