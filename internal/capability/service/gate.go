package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
	capabilityDomain "github.com/allisson/entitygate/internal/capability/domain"
	"github.com/allisson/entitygate/internal/metrics"
)

// Gate evaluates the layered authorization checks that stand between an
// authenticated caller and a capability. Layers run in a fixed order and the
// first denial short-circuits the rest:
//
//  1. global access: the caller holds at least one service-minimum role
//  2. capability visibility: the caller's roles intersect the visibility tags
//  3. invocation permission: every required action is granted somewhere
//
// Data filtering, the fourth layer, runs inside capability handlers because
// only they know the shape of their results.
type Gate struct {
	minimumRoles []string
	metrics      metrics.BusinessMetrics
	logger       *slog.Logger
}

// NewGate creates a Gate enforcing the given minimum global roles.
func NewGate(minimumRoles []string, m metrics.BusinessMetrics, logger *slog.Logger) *Gate {
	return &Gate{
		minimumRoles: minimumRoles,
		metrics:      m,
		logger:       logger,
	}
}

// CheckGlobalAccess verifies the caller holds at least one of the minimum
// global roles. An empty minimum set admits every authenticated caller.
func (g *Gate) CheckGlobalAccess(ctx context.Context, entitlements *authDomain.Entitlements) error {
	if len(g.minimumRoles) > 0 && !entitlements.HasAnyRole(g.minimumRoles) {
		g.record(ctx, capabilityDomain.LayerGlobalAccess, "deny")
		g.logger.Debug("global access denied",
			slog.String("subject_id", entitlements.SubjectID),
			slog.Any("roles", entitlements.GlobalRoles))
		return capabilityDomain.NewDenial(
			capabilityDomain.LayerGlobalAccess,
			"",
			fmt.Sprintf("requires one of roles %s", strings.Join(g.minimumRoles, ", ")),
		)
	}

	g.record(ctx, capabilityDomain.LayerGlobalAccess, "allow")
	return nil
}

// CheckVisibility verifies the caller may see the capability. Descriptors
// without visibility tags are visible to every authenticated caller.
func (g *Gate) CheckVisibility(
	ctx context.Context,
	descriptor *capabilityDomain.Descriptor,
	entitlements *authDomain.Entitlements,
) error {
	if len(descriptor.VisibilityTags) > 0 && !entitlements.HasAnyRole(descriptor.VisibilityTags) {
		g.record(ctx, capabilityDomain.LayerVisibility, "deny")
		return capabilityDomain.NewDenial(
			capabilityDomain.LayerVisibility,
			descriptor.Name,
			"caller roles do not intersect visibility tags",
		)
	}

	g.record(ctx, capabilityDomain.LayerVisibility, "allow")
	return nil
}

// CheckInvocation verifies every required permission action is granted on at
// least one resource key.
func (g *Gate) CheckInvocation(
	ctx context.Context,
	descriptor *capabilityDomain.Descriptor,
	entitlements *authDomain.Entitlements,
) error {
	for _, action := range descriptor.RequiredPermissions {
		if !entitlements.HasPermissionAnywhere(action) {
			g.record(ctx, capabilityDomain.LayerInvocationPermission, "deny")
			g.logger.Debug("invocation permission denied",
				slog.String("subject_id", entitlements.SubjectID),
				slog.String("capability", descriptor.Name),
				slog.String("action", action))
			return capabilityDomain.NewDenial(
				capabilityDomain.LayerInvocationPermission,
				descriptor.Name,
				fmt.Sprintf("action %q is not granted on any resource", action),
			)
		}
	}

	g.record(ctx, capabilityDomain.LayerInvocationPermission, "allow")
	return nil
}

// Authorize runs the first three layers in order, stopping at the first
// denial.
func (g *Gate) Authorize(
	ctx context.Context,
	descriptor *capabilityDomain.Descriptor,
	entitlements *authDomain.Entitlements,
) error {
	if err := g.CheckGlobalAccess(ctx, entitlements); err != nil {
		return err
	}
	if err := g.CheckVisibility(ctx, descriptor, entitlements); err != nil {
		return err
	}
	return g.CheckInvocation(ctx, descriptor, entitlements)
}

// RecordDataFiltering records the data-filtering layer's decision for an
// invocation. Handlers make the decision; the gate only accounts for it.
func (g *Gate) RecordDataFiltering(ctx context.Context, allowed bool) {
	decision := "allow"
	if !allowed {
		decision = "deny"
	}
	g.record(ctx, capabilityDomain.LayerDataFiltering, decision)
}

func (g *Gate) record(ctx context.Context, layer capabilityDomain.Layer, decision string) {
	g.metrics.RecordAuthzDecision(ctx, string(layer), decision)
}
