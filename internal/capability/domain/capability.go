// Package domain defines capability descriptors, invocation types, and the
// authorization denial model.
//
// A capability is a named operation exposed to callers. Each descriptor
// declares who may see it (visibility tags) and what the caller must be able
// to do to invoke it (required permission actions). Descriptors are static
// configuration; entitlement checks against them happen per request.
package domain

import (
	"context"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
)

// HandlerFunc executes a capability invocation. Handlers receive the caller's
// entitlements and are responsible for narrowing their results to what those
// entitlements allow.
type HandlerFunc func(ctx context.Context, invocation *Invocation) (*Result, error)

// Descriptor declares a capability's identity and authorization surface.
type Descriptor struct {
	// Name uniquely identifies the capability.
	Name string
	// Description is shown to callers when listing visible capabilities.
	Description string
	// VisibilityTags gate who can see and invoke the capability. A caller
	// needs at least one matching global role. An empty set means visible
	// to every authenticated caller.
	VisibilityTags []string
	// RequiredPermissions are actions the caller must hold on at least one
	// resource key. All listed actions are required.
	RequiredPermissions []string
	// Handler executes the invocation after the authorization gate passes.
	Handler HandlerFunc
}

// Invocation is a single capability call.
type Invocation struct {
	// Capability is the name of the capability being invoked.
	Capability string
	// Arguments carries the caller-supplied invocation arguments.
	Arguments map[string]any
	// Entitlements are the caller's resolved entitlements.
	Entitlements *authDomain.Entitlements
}

// Argument returns the named string argument, or "" when absent or not a
// string.
func (i *Invocation) Argument(name string) string {
	value, _ := i.Arguments[name].(string)
	return value
}

// Result is the outcome of a successful invocation.
type Result struct {
	// Data is the capability-specific payload.
	Data any `json:"data"`
	// Warnings carries non-fatal conditions the caller should see, such as
	// results served from a stale snapshot.
	Warnings []string `json:"warnings,omitempty"`
}
