package domain

import (
	"errors"
	"fmt"
)

// Layer identifies the authorization layer that produced a decision. Layers
// are evaluated in declaration order and the first denial wins.
type Layer string

const (
	// LayerGlobalAccess checks the caller's global roles against the
	// service-wide minimum.
	LayerGlobalAccess Layer = "global-access"

	// LayerVisibility checks the capability's visibility tags against the
	// caller's roles.
	LayerVisibility Layer = "capability-visibility"

	// LayerInvocationPermission checks the capability's required permission
	// actions against the caller's resource permissions.
	LayerInvocationPermission Layer = "invocation-permission"

	// LayerDataFiltering narrows results inside capability handlers to what
	// the caller's entitlements allow.
	LayerDataFiltering Layer = "data-filtering"
)

// Denial is an authorization refusal from a specific layer. It is an error
// so it can travel through the usual error paths, and a distinct type so
// transports can map each layer to the right response.
type Denial struct {
	// Layer is the authorization layer that refused.
	Layer Layer
	// Capability names the capability involved, when the denial is about one.
	Capability string
	// Reason is a short operator-facing explanation. It is safe to log but
	// visibility denials must not reach the caller verbatim.
	Reason string
}

func (d *Denial) Error() string {
	if d.Capability == "" {
		return fmt.Sprintf("%s denied: %s", d.Layer, d.Reason)
	}
	return fmt.Sprintf("%s denied for %q: %s", d.Layer, d.Capability, d.Reason)
}

// NewDenial creates a denial for the given layer and capability.
func NewDenial(layer Layer, capability, reason string) *Denial {
	return &Denial{Layer: layer, Capability: capability, Reason: reason}
}

// AsDenial returns the denial in err's tree, or nil when err carries none.
func AsDenial(err error) *Denial {
	var denial *Denial
	if errors.As(err, &denial) {
		return denial
	}
	return nil
}
