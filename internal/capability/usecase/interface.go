// Package usecase orchestrates capability listing and invocation behind the
// layered authorization gate.
package usecase

import (
	"context"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
	capabilityDomain "github.com/allisson/entitygate/internal/capability/domain"
)

// Registry is the capability lookup surface consumed by this use case.
type Registry interface {
	// Get returns the descriptor for the given name.
	Get(name string) (*capabilityDomain.Descriptor, bool)

	// List returns all registered descriptors ordered by name.
	List() []*capabilityDomain.Descriptor
}

// Gate evaluates the ordered authorization layers.
type Gate interface {
	// CheckGlobalAccess verifies the caller holds a service-minimum role.
	CheckGlobalAccess(ctx context.Context, entitlements *authDomain.Entitlements) error

	// CheckVisibility verifies the caller may see the capability.
	CheckVisibility(
		ctx context.Context,
		descriptor *capabilityDomain.Descriptor,
		entitlements *authDomain.Entitlements,
	) error

	// Authorize runs global access, visibility, and invocation permission in
	// order, stopping at the first denial.
	Authorize(
		ctx context.Context,
		descriptor *capabilityDomain.Descriptor,
		entitlements *authDomain.Entitlements,
	) error

	// RecordDataFiltering accounts for the data-filtering layer's decision.
	RecordDataFiltering(ctx context.Context, allowed bool)
}

// View is the caller-facing description of a visible capability.
type View struct {
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	RequiredPermissions []string `json:"required_permissions,omitempty"`
}

// CapabilityUseCase lists and invokes capabilities on behalf of an
// authenticated caller. Implementations hold no per-request state; all
// caller context arrives as arguments.
type CapabilityUseCase interface {
	// ListVisible returns the capabilities the caller may see, ordered by
	// name. Callers below the global access minimum get a denial instead.
	ListVisible(
		ctx context.Context,
		entitlements *authDomain.Entitlements,
	) ([]View, error)

	// Invoke authorizes and executes a capability. A capability hidden from
	// the caller denies with the visibility layer, which transports present
	// as absence.
	Invoke(
		ctx context.Context,
		name string,
		arguments map[string]any,
		entitlements *authDomain.Entitlements,
	) (*capabilityDomain.Result, error)
}
