package domain

import (
	"sort"
	"time"
)

// Snapshot is an immutable, fully-formed copy of the downstream dataset.
// Construct with NewSnapshot and never mutate the entities map afterwards;
// publication replaces the whole snapshot rather than updating it in place.
type Snapshot struct {
	entities  map[string]Entity
	fetchedAt time.Time
	ttl       time.Duration
}

// NewSnapshot builds a snapshot from the fetched entities. The map is copied
// so later changes by the caller cannot leak into the published snapshot.
func NewSnapshot(entities map[string]Entity, fetchedAt time.Time, ttl time.Duration) *Snapshot {
	copied := make(map[string]Entity, len(entities))
	for id, entity := range entities {
		copied[id] = entity
	}

	return &Snapshot{
		entities:  copied,
		fetchedAt: fetchedAt.UTC(),
		ttl:       ttl,
	}
}

// Entity returns the entity with the given id, if present.
func (s *Snapshot) Entity(id string) (Entity, bool) {
	entity, ok := s.entities[id]
	return entity, ok
}

// Entities returns all entities in the snapshot. The returned slice is owned
// by the caller; the snapshot itself stays untouched.
func (s *Snapshot) Entities() []Entity {
	out := make([]Entity, 0, len(s.entities))
	for _, entity := range s.entities {
		out = append(out, entity)
	}
	return out
}

// Len returns the number of entities in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.entities)
}

// Categories returns the sorted set of categories present in the snapshot.
func (s *Snapshot) Categories() []string {
	seen := make(map[string]struct{})
	for _, entity := range s.entities {
		seen[entity.Category] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for category := range seen {
		out = append(out, category)
	}
	sort.Strings(out)

	return out
}

// FetchedAt returns the time the snapshot's data was fetched.
func (s *Snapshot) FetchedAt() time.Time {
	return s.fetchedAt
}

// TTL returns the freshness window of the snapshot.
func (s *Snapshot) TTL() time.Duration {
	return s.ttl
}

// IsStale reports whether the snapshot's freshness window has elapsed at now.
func (s *Snapshot) IsStale(now time.Time) bool {
	return s.fetchedAt.Add(s.ttl).Before(now)
}
