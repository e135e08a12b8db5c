// Package domain defines the cached entity model and the immutable snapshot
// that the serving path reads from.
//
// A snapshot is a complete copy of the downstream dataset at a point in time.
// It is never mutated after construction: refreshes build a new snapshot and
// publish it wholesale, so concurrent readers always observe a consistent
// dataset from a single fetch cycle.
package domain

// Entity is the cacheable unit of downstream data. The category is the
// resource key that entitlements are evaluated against.
type Entity struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Category string            `json:"category"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
