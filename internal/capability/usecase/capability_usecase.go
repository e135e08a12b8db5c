package usecase

import (
	"context"
	"log/slog"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
	capabilityDomain "github.com/allisson/entitygate/internal/capability/domain"
	apperrors "github.com/allisson/entitygate/internal/errors"
)

// capabilityUseCase implements CapabilityUseCase on top of a registry and a
// gate.
type capabilityUseCase struct {
	registry Registry
	gate     Gate
	logger   *slog.Logger
}

// NewCapabilityUseCase creates a new CapabilityUseCase with the provided dependencies.
func NewCapabilityUseCase(registry Registry, gate Gate, logger *slog.Logger) CapabilityUseCase {
	return &capabilityUseCase{
		registry: registry,
		gate:     gate,
		logger:   logger,
	}
}

func (u *capabilityUseCase) ListVisible(
	ctx context.Context,
	entitlements *authDomain.Entitlements,
) ([]View, error) {
	if err := u.gate.CheckGlobalAccess(ctx, entitlements); err != nil {
		return nil, err
	}

	descriptors := u.registry.List()
	views := make([]View, 0, len(descriptors))
	for _, descriptor := range descriptors {
		if err := u.gate.CheckVisibility(ctx, descriptor, entitlements); err != nil {
			continue
		}
		views = append(views, View{
			Name:                descriptor.Name,
			Description:         descriptor.Description,
			RequiredPermissions: descriptor.RequiredPermissions,
		})
	}

	return views, nil
}

func (u *capabilityUseCase) Invoke(
	ctx context.Context,
	name string,
	arguments map[string]any,
	entitlements *authDomain.Entitlements,
) (*capabilityDomain.Result, error) {
	descriptor, ok := u.registry.Get(name)
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "unknown capability "+name)
	}

	if err := u.gate.Authorize(ctx, descriptor, entitlements); err != nil {
		return nil, err
	}

	invocation := &capabilityDomain.Invocation{
		Capability:   name,
		Arguments:    arguments,
		Entitlements: entitlements,
	}

	result, err := descriptor.Handler(ctx, invocation)
	if err != nil {
		if denial := capabilityDomain.AsDenial(err); denial != nil &&
			denial.Layer == capabilityDomain.LayerDataFiltering {
			u.gate.RecordDataFiltering(ctx, false)
			u.logger.Debug("data filtering denied invocation",
				slog.String("subject_id", entitlements.SubjectID),
				slog.String("capability", name),
				slog.String("reason", denial.Reason))
		}
		return nil, err
	}

	u.gate.RecordDataFiltering(ctx, true)

	return result, nil
}
