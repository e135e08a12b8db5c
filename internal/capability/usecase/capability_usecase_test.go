package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
	capabilityDomain "github.com/allisson/entitygate/internal/capability/domain"
	apperrors "github.com/allisson/entitygate/internal/errors"
)

// mockRegistry is a mock implementation of Registry for testing.
type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) Get(name string) (*capabilityDomain.Descriptor, bool) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*capabilityDomain.Descriptor), args.Bool(1)
}

func (m *mockRegistry) List() []*capabilityDomain.Descriptor {
	args := m.Called()
	return args.Get(0).([]*capabilityDomain.Descriptor)
}

// mockGate is a mock implementation of Gate for testing.
type mockGate struct {
	mock.Mock
}

func (m *mockGate) CheckGlobalAccess(ctx context.Context, entitlements *authDomain.Entitlements) error {
	args := m.Called(ctx, entitlements)
	return args.Error(0)
}

func (m *mockGate) CheckVisibility(
	ctx context.Context,
	descriptor *capabilityDomain.Descriptor,
	entitlements *authDomain.Entitlements,
) error {
	args := m.Called(ctx, descriptor, entitlements)
	return args.Error(0)
}

func (m *mockGate) Authorize(
	ctx context.Context,
	descriptor *capabilityDomain.Descriptor,
	entitlements *authDomain.Entitlements,
) error {
	args := m.Called(ctx, descriptor, entitlements)
	return args.Error(0)
}

func (m *mockGate) RecordDataFiltering(ctx context.Context, allowed bool) {
	m.Called(ctx, allowed)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readerEntitlements() *authDomain.Entitlements {
	return &authDomain.Entitlements{
		SubjectID:   "app-alpha",
		GlobalRoles: []string{"reader"},
		ResourcePermissions: map[string][]string{
			"apps/alpha/*": {"read"},
		},
		ResolvedAt: time.Now(),
		ExpiresAt:  time.Now().Add(time.Hour),
	}
}

func namedDescriptor(name string) *capabilityDomain.Descriptor {
	return &capabilityDomain.Descriptor{
		Name:        name,
		Description: "test capability",
		Handler: func(context.Context, *capabilityDomain.Invocation) (*capabilityDomain.Result, error) {
			return &capabilityDomain.Result{Data: name}, nil
		},
	}
}

func TestCapabilityUseCaseListVisible(t *testing.T) {
	ctx := context.Background()

	t.Run("returns visible capabilities", func(t *testing.T) {
		registry := new(mockRegistry)
		gate := new(mockGate)
		useCase := NewCapabilityUseCase(registry, gate, testLogger())

		visible := namedDescriptor("get_entity")
		hidden := namedDescriptor("refresh_cache")
		entitlements := readerEntitlements()

		gate.On("CheckGlobalAccess", ctx, entitlements).Return(nil)
		registry.On("List").Return([]*capabilityDomain.Descriptor{visible, hidden})
		gate.On("CheckVisibility", ctx, visible, entitlements).Return(nil)
		gate.On("CheckVisibility", ctx, hidden, entitlements).
			Return(capabilityDomain.NewDenial(capabilityDomain.LayerVisibility, "refresh_cache", "hidden"))

		views, err := useCase.ListVisible(ctx, entitlements)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "get_entity", views[0].Name)
	})

	t.Run("global access denial stops listing", func(t *testing.T) {
		registry := new(mockRegistry)
		gate := new(mockGate)
		useCase := NewCapabilityUseCase(registry, gate, testLogger())

		entitlements := readerEntitlements()
		denial := capabilityDomain.NewDenial(capabilityDomain.LayerGlobalAccess, "", "no qualifying role")
		gate.On("CheckGlobalAccess", ctx, entitlements).Return(denial)

		_, err := useCase.ListVisible(ctx, entitlements)
		require.NotNil(t, capabilityDomain.AsDenial(err))
		registry.AssertNotCalled(t, "List")
	})

	t.Run("nothing visible yields empty list", func(t *testing.T) {
		registry := new(mockRegistry)
		gate := new(mockGate)
		useCase := NewCapabilityUseCase(registry, gate, testLogger())

		entitlements := readerEntitlements()
		hidden := namedDescriptor("refresh_cache")

		gate.On("CheckGlobalAccess", ctx, entitlements).Return(nil)
		registry.On("List").Return([]*capabilityDomain.Descriptor{hidden})
		gate.On("CheckVisibility", ctx, hidden, entitlements).
			Return(capabilityDomain.NewDenial(capabilityDomain.LayerVisibility, "refresh_cache", "hidden"))

		views, err := useCase.ListVisible(ctx, entitlements)
		require.NoError(t, err)
		assert.Empty(t, views)
	})
}

func TestCapabilityUseCaseInvoke(t *testing.T) {
	ctx := context.Background()

	t.Run("authorized invocation runs the handler", func(t *testing.T) {
		registry := new(mockRegistry)
		gate := new(mockGate)
		useCase := NewCapabilityUseCase(registry, gate, testLogger())

		descriptor := namedDescriptor("get_entity")
		entitlements := readerEntitlements()

		registry.On("Get", "get_entity").Return(descriptor, true)
		gate.On("Authorize", ctx, descriptor, entitlements).Return(nil)
		gate.On("RecordDataFiltering", ctx, true).Return()

		result, err := useCase.Invoke(ctx, "get_entity", map[string]any{"id": "svc-1"}, entitlements)
		require.NoError(t, err)
		assert.Equal(t, "get_entity", result.Data)
		gate.AssertExpectations(t)
	})

	t.Run("unknown capability", func(t *testing.T) {
		registry := new(mockRegistry)
		gate := new(mockGate)
		useCase := NewCapabilityUseCase(registry, gate, testLogger())

		registry.On("Get", "missing").Return(nil, false)

		_, err := useCase.Invoke(ctx, "missing", nil, readerEntitlements())
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		gate.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("gate denial skips the handler", func(t *testing.T) {
		registry := new(mockRegistry)
		gate := new(mockGate)
		useCase := NewCapabilityUseCase(registry, gate, testLogger())

		called := false
		descriptor := &capabilityDomain.Descriptor{
			Name: "refresh_cache",
			Handler: func(context.Context, *capabilityDomain.Invocation) (*capabilityDomain.Result, error) {
				called = true
				return &capabilityDomain.Result{}, nil
			},
		}
		entitlements := readerEntitlements()
		denial := capabilityDomain.NewDenial(capabilityDomain.LayerVisibility, "refresh_cache", "hidden")

		registry.On("Get", "refresh_cache").Return(descriptor, true)
		gate.On("Authorize", ctx, descriptor, entitlements).Return(denial)

		_, err := useCase.Invoke(ctx, "refresh_cache", nil, entitlements)
		found := capabilityDomain.AsDenial(err)
		require.NotNil(t, found)
		assert.Equal(t, capabilityDomain.LayerVisibility, found.Layer)
		assert.False(t, called)
	})

	t.Run("data filtering denial from the handler is recorded", func(t *testing.T) {
		registry := new(mockRegistry)
		gate := new(mockGate)
		useCase := NewCapabilityUseCase(registry, gate, testLogger())

		denial := capabilityDomain.NewDenial(capabilityDomain.LayerDataFiltering, "get_entity", "outside categories")
		descriptor := &capabilityDomain.Descriptor{
			Name: "get_entity",
			Handler: func(context.Context, *capabilityDomain.Invocation) (*capabilityDomain.Result, error) {
				return nil, denial
			},
		}
		entitlements := readerEntitlements()

		registry.On("Get", "get_entity").Return(descriptor, true)
		gate.On("Authorize", ctx, descriptor, entitlements).Return(nil)
		gate.On("RecordDataFiltering", ctx, false).Return()

		_, err := useCase.Invoke(ctx, "get_entity", nil, entitlements)
		assert.Equal(t, denial, capabilityDomain.AsDenial(err))
		gate.AssertExpectations(t)
	})

	t.Run("handler errors propagate", func(t *testing.T) {
		registry := new(mockRegistry)
		gate := new(mockGate)
		useCase := NewCapabilityUseCase(registry, gate, testLogger())

		boom := errors.New("boom")
		descriptor := &capabilityDomain.Descriptor{
			Name: "get_entity",
			Handler: func(context.Context, *capabilityDomain.Invocation) (*capabilityDomain.Result, error) {
				return nil, boom
			},
		}
		entitlements := readerEntitlements()

		registry.On("Get", "get_entity").Return(descriptor, true)
		gate.On("Authorize", ctx, descriptor, entitlements).Return(nil)

		_, err := useCase.Invoke(ctx, "get_entity", nil, entitlements)
		assert.ErrorIs(t, err, boom)
		gate.AssertNotCalled(t, "RecordDataFiltering", mock.Anything, mock.Anything)
	})
}
