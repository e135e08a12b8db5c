package domain

import (
	"slices"
	"strings"
	"time"
)

// Entitlements is the resolved, per-session authorization state of a caller.
// Read-only after resolution; when it expires the session must re-resolve
// rather than keep using it, otherwise access would extend past the window
// the identity provider granted.
type Entitlements struct {
	SubjectID string
	// GlobalRoles is the hierarchically-expanded role set.
	GlobalRoles []string
	// ResourcePermissions maps a resource-key pattern to the actions granted
	// on resources matching it. Patterns support the same wildcard grammar as
	// MatchResource.
	ResourcePermissions map[string][]string
	ResolvedAt          time.Time
	ExpiresAt           time.Time
}

// IsExpired reports whether the entitlements must be re-resolved at now.
func (e *Entitlements) IsExpired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// HasAnyRole reports whether the caller holds at least one of the given
// roles. An empty required set matches nobody; callers that want "no check"
// should not call this at all.
func (e *Entitlements) HasAnyRole(roles []string) bool {
	for _, role := range roles {
		if slices.Contains(e.GlobalRoles, role) {
			return true
		}
	}
	return false
}

// HasPermission reports whether any resource-key pattern matching the given
// resource grants the action.
func (e *Entitlements) HasPermission(resource, action string) bool {
	if resource == "" || action == "" {
		return false
	}

	for pattern, actions := range e.ResourcePermissions {
		if MatchResource(pattern, resource) && slices.Contains(actions, action) {
			return true
		}
	}

	return false
}

// HasPermissionAnywhere reports whether the action is granted on at least one
// resource key. Used by the invocation-permission layer: it answers "may the
// caller perform this action at all"; data filtering then narrows the result
// to the concrete resources.
func (e *Entitlements) HasPermissionAnywhere(action string) bool {
	if action == "" {
		return false
	}

	for _, actions := range e.ResourcePermissions {
		if slices.Contains(actions, action) {
			return true
		}
	}

	return false
}

// MatchResource checks if a resource key matches a permission pattern.
// Supports three types of wildcards:
//  1. Full wildcard: "*" matches any resource
//  2. Trailing wildcard: "prefix/*" matches any resource starting with "prefix/" (greedy)
//  3. Mid-path wildcard: "apps/*/db" matches resources with * as a single segment
//
// Matching is case-sensitive; without a wildcard an exact match is required.
func MatchResource(pattern, resource string) bool {
	// Special case: full wildcard matches everything
	if pattern == "*" {
		return true
	}

	// No wildcard: exact match required
	if !strings.Contains(pattern, "*") {
		return pattern == resource
	}

	// Trailing wildcard (/*): prefix match (greedy - matches remaining segments)
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		return strings.HasPrefix(resource, prefix+"/")
	}

	// Mid-path wildcards: segment-by-segment matching, each * matches exactly
	// one segment
	patternParts := strings.Split(pattern, "/")
	resourceParts := strings.Split(resource, "/")

	if len(patternParts) != len(resourceParts) {
		return false
	}

	for i := range patternParts {
		if patternParts[i] == "*" {
			continue
		}
		if patternParts[i] != resourceParts[i] {
			return false
		}
	}

	return true
}
