package service

import (
	"fmt"
	"slices"
	"time"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
	apperrors "github.com/allisson/entitygate/internal/errors"
)

// DefaultRoleHierarchy declares which roles each role implies. Expansion is
// transitive: holding "admin" grants "developer" and therefore "reader".
var DefaultRoleHierarchy = map[string][]string{
	"admin":     {"developer"},
	"developer": {"reader"},
}

type claimsResolver struct {
	hierarchy map[string][]string
	maxAge    time.Duration
	now       func() time.Time
}

// NewClaimsResolver returns a Resolver that reads roles and resource
// permissions directly from token claims. A nil hierarchy falls back to
// DefaultRoleHierarchy; maxAge caps how long resolved entitlements may be
// reused before the session must re-resolve.
func NewClaimsResolver(hierarchy map[string][]string, maxAge time.Duration) Resolver {
	if hierarchy == nil {
		hierarchy = DefaultRoleHierarchy
	}
	return &claimsResolver{
		hierarchy: hierarchy,
		maxAge:    maxAge,
		now:       time.Now,
	}
}

func (r *claimsResolver) Hierarchy() map[string][]string {
	return r.hierarchy
}

func (r *claimsResolver) Resolve(assertion *authDomain.IdentityAssertion) (*authDomain.Entitlements, error) {
	if assertion == nil || assertion.SubjectID == "" {
		return nil, apperrors.Wrap(authDomain.ErrMapping, "assertion has no subject")
	}

	roles, err := stringSliceClaim(assertion.Claims, "roles")
	if err != nil {
		return nil, err
	}

	permissions, err := permissionsClaim(assertion.Claims)
	if err != nil {
		return nil, err
	}

	// Legacy tokens carry a flat "categories" claim instead of resource
	// permissions; each category grants read on the category itself and on
	// its subtree. The bare grant matters: entity categories are matched
	// exactly, so "apps/alpha/*" alone would never cover an entity whose
	// category is "apps/alpha".
	categories, err := stringSliceClaim(assertion.Claims, "categories")
	if err != nil {
		return nil, err
	}
	for _, category := range categories {
		for _, pattern := range []string{category, category + "/*"} {
			if !slices.Contains(permissions[pattern], "read") {
				permissions[pattern] = append(permissions[pattern], "read")
			}
		}
	}

	resolvedAt := r.now()
	expiresAt := assertion.ExpiresAt
	if r.maxAge > 0 {
		if capped := resolvedAt.Add(r.maxAge); capped.Before(expiresAt) {
			expiresAt = capped
		}
	}

	return &authDomain.Entitlements{
		SubjectID:           assertion.SubjectID,
		GlobalRoles:         r.expandRoles(roles),
		ResourcePermissions: permissions,
		ResolvedAt:          resolvedAt,
		ExpiresAt:           expiresAt,
	}, nil
}

// expandRoles computes the transitive closure of the given roles over the
// declared hierarchy, preserving first-seen order.
func (r *claimsResolver) expandRoles(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	expanded := make([]string, 0, len(roles))

	queue := append([]string{}, roles...)
	for len(queue) > 0 {
		role := queue[0]
		queue = queue[1:]
		if role == "" || seen[role] {
			continue
		}
		seen[role] = true
		expanded = append(expanded, role)
		queue = append(queue, r.hierarchy[role]...)
	}

	return expanded
}

func stringSliceClaim(claims map[string]any, name string) ([]string, error) {
	raw, ok := claims[name]
	if !ok || raw == nil {
		return nil, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, apperrors.Wrap(authDomain.ErrMapping, fmt.Sprintf("claim %q is not a list", name))
	}

	values := make([]string, 0, len(items))
	for _, item := range items {
		value, ok := item.(string)
		if !ok {
			return nil, apperrors.Wrap(authDomain.ErrMapping, fmt.Sprintf("claim %q contains a non-string entry", name))
		}
		values = append(values, value)
	}

	return values, nil
}

func permissionsClaim(claims map[string]any) (map[string][]string, error) {
	permissions := make(map[string][]string)

	raw, ok := claims["permissions"]
	if !ok || raw == nil {
		return permissions, nil
	}

	entries, ok := raw.(map[string]any)
	if !ok {
		return nil, apperrors.Wrap(authDomain.ErrMapping, `claim "permissions" is not an object`)
	}

	for pattern, rawActions := range entries {
		items, ok := rawActions.([]any)
		if !ok {
			return nil, apperrors.Wrap(authDomain.ErrMapping, fmt.Sprintf("permissions for %q are not a list", pattern))
		}
		actions := make([]string, 0, len(items))
		for _, item := range items {
			action, ok := item.(string)
			if !ok {
				return nil, apperrors.Wrap(authDomain.ErrMapping, fmt.Sprintf("permissions for %q contain a non-string action", pattern))
			}
			actions = append(actions, action)
		}
		permissions[pattern] = actions
	}

	return permissions, nil
}
