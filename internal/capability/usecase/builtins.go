package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	cacheDomain "github.com/allisson/entitygate/internal/cache/domain"
	capabilityDomain "github.com/allisson/entitygate/internal/capability/domain"
	apperrors "github.com/allisson/entitygate/internal/errors"
)

// Built-in capability names.
const (
	CapabilityListEntities = "list_entities"
	CapabilityGetEntity    = "get_entity"
	CapabilityRefreshCache = "refresh_cache"
)

// staleWarning is attached to results served from a snapshot past its
// freshness window.
const staleWarning = "results served from a stale snapshot; the last refresh is older than the configured freshness window"

// CacheUseCase is the cache surface the built-in capabilities consume.
type CacheUseCase interface {
	// Snapshot returns the currently published snapshot, or ErrUnavailable
	// when nothing has been published yet.
	Snapshot(ctx context.Context) (*cacheDomain.Snapshot, error)

	// Refresh forces an immediate refresh and returns the entity count of
	// the published snapshot.
	Refresh(ctx context.Context) (int, error)
}

// Registrar accepts capability descriptors during startup.
type Registrar interface {
	Register(descriptor *capabilityDomain.Descriptor) error
}

// Builtins provides the built-in capabilities backed by the entity cache.
type Builtins struct {
	cache CacheUseCase
	now   func() time.Time
}

// NewBuiltins creates the built-in capability set.
func NewBuiltins(cache CacheUseCase) *Builtins {
	return &Builtins{
		cache: cache,
		now:   time.Now,
	}
}

// Register adds every built-in capability to the registrar.
func (b *Builtins) Register(registrar Registrar) error {
	descriptors := []*capabilityDomain.Descriptor{
		{
			Name:                CapabilityListEntities,
			Description:         "List cached entities readable by the caller, optionally narrowed to one category",
			VisibilityTags:      []string{"reader", "entities"},
			RequiredPermissions: []string{"read"},
			Handler:             b.listEntities,
		},
		{
			Name:                CapabilityGetEntity,
			Description:         "Fetch a single cached entity by id",
			VisibilityTags:      []string{"reader", "entities"},
			RequiredPermissions: []string{"read"},
			Handler:             b.getEntity,
		},
		{
			Name:                CapabilityRefreshCache,
			Description:         "Force an immediate cache refresh from the downstream source",
			VisibilityTags:      []string{"admin"},
			RequiredPermissions: []string{"refresh"},
			Handler:             b.refreshCache,
		},
	}

	for _, descriptor := range descriptors {
		if err := registrar.Register(descriptor); err != nil {
			return fmt.Errorf("register %s: %w", descriptor.Name, err)
		}
	}

	return nil
}

func (b *Builtins) listEntities(
	ctx context.Context,
	invocation *capabilityDomain.Invocation,
) (*capabilityDomain.Result, error) {
	snapshot, err := b.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	entitlements := invocation.Entitlements
	category := invocation.Argument("category")

	if category != "" && !entitlements.HasPermission(category, "read") {
		return nil, capabilityDomain.NewDenial(
			capabilityDomain.LayerDataFiltering,
			CapabilityListEntities,
			fmt.Sprintf("category %q is outside the caller's readable resources", category),
		)
	}

	readable := make([]cacheDomain.Entity, 0)
	for _, entity := range snapshot.Entities() {
		if category != "" && entity.Category != category {
			continue
		}
		if entitlements.HasPermission(entity.Category, "read") {
			readable = append(readable, entity)
		}
	}

	// A caller whose entitlements hide the whole dataset gets an explicit
	// denial, not a silently empty result.
	if category == "" && snapshot.Len() > 0 && len(readable) == 0 {
		return nil, capabilityDomain.NewDenial(
			capabilityDomain.LayerDataFiltering,
			CapabilityListEntities,
			"no cached entity falls inside the caller's readable resources",
		)
	}

	sort.Slice(readable, func(i, j int) bool {
		return readable[i].ID < readable[j].ID
	})

	return &capabilityDomain.Result{
		Data:     readable,
		Warnings: b.snapshotWarnings(snapshot),
	}, nil
}

func (b *Builtins) getEntity(
	ctx context.Context,
	invocation *capabilityDomain.Invocation,
) (*capabilityDomain.Result, error) {
	id := invocation.Argument("id")
	if id == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "argument \"id\" is required")
	}

	snapshot, err := b.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	entity, ok := snapshot.Entity(id)
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "entity "+id)
	}

	if !invocation.Entitlements.HasPermission(entity.Category, "read") {
		return nil, capabilityDomain.NewDenial(
			capabilityDomain.LayerDataFiltering,
			CapabilityGetEntity,
			fmt.Sprintf("entity %q belongs to category %q outside the caller's readable resources", id, entity.Category),
		)
	}

	return &capabilityDomain.Result{
		Data:     entity,
		Warnings: b.snapshotWarnings(snapshot),
	}, nil
}

func (b *Builtins) refreshCache(
	ctx context.Context,
	_ *capabilityDomain.Invocation,
) (*capabilityDomain.Result, error) {
	total, err := b.cache.Refresh(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "cache refresh failed")
	}

	return &capabilityDomain.Result{
		Data: map[string]any{"total_entities": total},
	}, nil
}

func (b *Builtins) snapshotWarnings(snapshot *cacheDomain.Snapshot) []string {
	if snapshot.IsStale(b.now()) {
		return []string{staleWarning}
	}
	return nil
}
