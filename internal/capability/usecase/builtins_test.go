package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
	cacheDomain "github.com/allisson/entitygate/internal/cache/domain"
	capabilityDomain "github.com/allisson/entitygate/internal/capability/domain"
	capabilityService "github.com/allisson/entitygate/internal/capability/service"
	apperrors "github.com/allisson/entitygate/internal/errors"
)

// stubCache implements CacheUseCase over a fixed snapshot.
type stubCache struct {
	snapshot     *cacheDomain.Snapshot
	refreshCount int
	refreshErr   error
	refreshes    int
}

func (s *stubCache) Snapshot(context.Context) (*cacheDomain.Snapshot, error) {
	if s.snapshot == nil {
		return nil, apperrors.Wrap(apperrors.ErrUnavailable, "no snapshot published")
	}
	return s.snapshot, nil
}

func (s *stubCache) Refresh(context.Context) (int, error) {
	s.refreshes++
	return s.refreshCount, s.refreshErr
}

func freshSnapshot(entities map[string]cacheDomain.Entity) *cacheDomain.Snapshot {
	return cacheDomain.NewSnapshot(entities, time.Now(), time.Hour)
}

func staleSnapshot(entities map[string]cacheDomain.Entity) *cacheDomain.Snapshot {
	return cacheDomain.NewSnapshot(entities, time.Now().Add(-2*time.Hour), time.Hour)
}

func testEntities() map[string]cacheDomain.Entity {
	return map[string]cacheDomain.Entity{
		"svc-1": {ID: "svc-1", Name: "alpha api", Category: "apps/alpha"},
		"svc-2": {ID: "svc-2", Name: "alpha worker", Category: "apps/alpha"},
		"svc-3": {ID: "svc-3", Name: "beta api", Category: "apps/beta"},
	}
}

func alphaReader() *authDomain.Entitlements {
	return &authDomain.Entitlements{
		SubjectID:   "app-alpha",
		GlobalRoles: []string{"reader"},
		ResourcePermissions: map[string][]string{
			"apps/alpha": {"read"},
		},
		ResolvedAt: time.Now(),
		ExpiresAt:  time.Now().Add(time.Hour),
	}
}

func invoke(
	t *testing.T,
	cache CacheUseCase,
	name string,
	arguments map[string]any,
	entitlements *authDomain.Entitlements,
) (*capabilityDomain.Result, error) {
	t.Helper()

	registry := capabilityService.NewRegistry()
	require.NoError(t, NewBuiltins(cache).Register(registry))

	descriptor, ok := registry.Get(name)
	require.True(t, ok)

	return descriptor.Handler(context.Background(), &capabilityDomain.Invocation{
		Capability:   name,
		Arguments:    arguments,
		Entitlements: entitlements,
	})
}

func TestBuiltinsRegister(t *testing.T) {
	registry := capabilityService.NewRegistry()
	require.NoError(t, NewBuiltins(&stubCache{}).Register(registry))

	names := make([]string, 0, 3)
	for _, descriptor := range registry.List() {
		names = append(names, descriptor.Name)
	}
	assert.Equal(t, []string{CapabilityGetEntity, CapabilityListEntities, CapabilityRefreshCache}, names)

	refresh, _ := registry.Get(CapabilityRefreshCache)
	assert.Equal(t, []string{"admin"}, refresh.VisibilityTags)
	assert.Equal(t, []string{"refresh"}, refresh.RequiredPermissions)
}

func TestListEntities(t *testing.T) {
	t.Run("filters to readable categories", func(t *testing.T) {
		cache := &stubCache{snapshot: freshSnapshot(testEntities())}

		result, err := invoke(t, cache, CapabilityListEntities, nil, alphaReader())
		require.NoError(t, err)

		entities := result.Data.([]cacheDomain.Entity)
		require.Len(t, entities, 2)
		assert.Equal(t, "svc-1", entities[0].ID)
		assert.Equal(t, "svc-2", entities[1].ID)
		assert.Empty(t, result.Warnings)
	})

	t.Run("category argument narrows results", func(t *testing.T) {
		cache := &stubCache{snapshot: freshSnapshot(testEntities())}

		result, err := invoke(t, cache, CapabilityListEntities,
			map[string]any{"category": "apps/alpha"}, alphaReader())
		require.NoError(t, err)

		entities := result.Data.([]cacheDomain.Entity)
		assert.Len(t, entities, 2)
	})

	t.Run("unreadable category argument denies", func(t *testing.T) {
		cache := &stubCache{snapshot: freshSnapshot(testEntities())}

		_, err := invoke(t, cache, CapabilityListEntities,
			map[string]any{"category": "apps/beta"}, alphaReader())

		denial := capabilityDomain.AsDenial(err)
		require.NotNil(t, denial)
		assert.Equal(t, capabilityDomain.LayerDataFiltering, denial.Layer)
	})

	t.Run("entitlements hiding everything deny instead of empty success", func(t *testing.T) {
		cache := &stubCache{snapshot: freshSnapshot(testEntities())}
		stranger := alphaReader()
		stranger.ResourcePermissions = map[string][]string{"other/*": {"read"}}

		_, err := invoke(t, cache, CapabilityListEntities, nil, stranger)

		denial := capabilityDomain.AsDenial(err)
		require.NotNil(t, denial)
		assert.Equal(t, capabilityDomain.LayerDataFiltering, denial.Layer)
	})

	t.Run("empty snapshot lists empty", func(t *testing.T) {
		cache := &stubCache{snapshot: freshSnapshot(nil)}

		result, err := invoke(t, cache, CapabilityListEntities, nil, alphaReader())
		require.NoError(t, err)
		assert.Empty(t, result.Data)
	})

	t.Run("stale snapshot carries a warning", func(t *testing.T) {
		cache := &stubCache{snapshot: staleSnapshot(testEntities())}

		result, err := invoke(t, cache, CapabilityListEntities, nil, alphaReader())
		require.NoError(t, err)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "stale")
	})

	t.Run("no snapshot published", func(t *testing.T) {
		cache := &stubCache{}

		_, err := invoke(t, cache, CapabilityListEntities, nil, alphaReader())
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})
}

func TestGetEntity(t *testing.T) {
	t.Run("readable entity", func(t *testing.T) {
		cache := &stubCache{snapshot: freshSnapshot(testEntities())}

		result, err := invoke(t, cache, CapabilityGetEntity,
			map[string]any{"id": "svc-1"}, alphaReader())
		require.NoError(t, err)

		entity := result.Data.(cacheDomain.Entity)
		assert.Equal(t, "alpha api", entity.Name)
	})

	t.Run("missing id argument", func(t *testing.T) {
		cache := &stubCache{snapshot: freshSnapshot(testEntities())}

		_, err := invoke(t, cache, CapabilityGetEntity, nil, alphaReader())
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("unknown entity", func(t *testing.T) {
		cache := &stubCache{snapshot: freshSnapshot(testEntities())}

		_, err := invoke(t, cache, CapabilityGetEntity,
			map[string]any{"id": "svc-999"}, alphaReader())
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("entity outside readable categories denies", func(t *testing.T) {
		cache := &stubCache{snapshot: freshSnapshot(testEntities())}

		_, err := invoke(t, cache, CapabilityGetEntity,
			map[string]any{"id": "svc-3"}, alphaReader())

		denial := capabilityDomain.AsDenial(err)
		require.NotNil(t, denial)
		assert.Equal(t, capabilityDomain.LayerDataFiltering, denial.Layer)
		assert.Contains(t, denial.Reason, "apps/beta")
	})

	t.Run("stale snapshot carries a warning", func(t *testing.T) {
		cache := &stubCache{snapshot: staleSnapshot(testEntities())}

		result, err := invoke(t, cache, CapabilityGetEntity,
			map[string]any{"id": "svc-1"}, alphaReader())
		require.NoError(t, err)
		require.Len(t, result.Warnings, 1)
	})
}

func TestRefreshCache(t *testing.T) {
	t.Run("refresh returns the new entity count", func(t *testing.T) {
		cache := &stubCache{snapshot: freshSnapshot(testEntities()), refreshCount: 42}

		result, err := invoke(t, cache, CapabilityRefreshCache, nil, alphaReader())
		require.NoError(t, err)

		data := result.Data.(map[string]any)
		assert.Equal(t, 42, data["total_entities"])
		assert.Equal(t, 1, cache.refreshes)
	})

	t.Run("refresh failure propagates", func(t *testing.T) {
		cache := &stubCache{refreshErr: cacheDomain.ErrFetch}

		_, err := invoke(t, cache, CapabilityRefreshCache, nil, alphaReader())
		assert.ErrorIs(t, err, cacheDomain.ErrFetch)
	})
}
