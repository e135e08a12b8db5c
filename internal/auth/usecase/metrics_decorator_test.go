package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
)

// mockAuthUseCase is a mock implementation of AuthUseCase for testing.
type mockAuthUseCase struct {
	mock.Mock
}

func (m *mockAuthUseCase) Authenticate(ctx context.Context, token string) (*authDomain.Entitlements, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Entitlements), args.Error(1)
}

func (m *mockAuthUseCase) InvalidateSession(token string) {
	m.Called(token)
}

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordAuthzDecision(ctx context.Context, layer, decision string) {
	m.Called(ctx, layer, decision)
}

func TestAuthUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("records success", func(t *testing.T) {
		next := new(mockAuthUseCase)
		m := new(mockBusinessMetrics)
		useCase := NewAuthUseCaseWithMetrics(next, m)

		entitlements := testEntitlements()
		next.On("Authenticate", ctx, "token").Return(entitlements, nil)
		m.On("RecordOperation", ctx, "auth", "authenticate", "success").Return()
		m.On("RecordDuration", ctx, "auth", "authenticate", mock.Anything, "success").Return()

		result, err := useCase.Authenticate(ctx, "token")
		require.NoError(t, err)
		assert.Same(t, entitlements, result)
		m.AssertExpectations(t)
	})

	t.Run("records error", func(t *testing.T) {
		next := new(mockAuthUseCase)
		m := new(mockBusinessMetrics)
		useCase := NewAuthUseCaseWithMetrics(next, m)

		next.On("Authenticate", ctx, "token").Return(nil, authDomain.ErrVerification)
		m.On("RecordOperation", ctx, "auth", "authenticate", "error").Return()
		m.On("RecordDuration", ctx, "auth", "authenticate", mock.Anything, "error").Return()

		_, err := useCase.Authenticate(ctx, "token")
		assert.ErrorIs(t, err, authDomain.ErrVerification)
		m.AssertExpectations(t)
	})

	t.Run("invalidate passes through", func(t *testing.T) {
		next := new(mockAuthUseCase)
		useCase := NewAuthUseCaseWithMetrics(next, new(mockBusinessMetrics))

		next.On("InvalidateSession", "token").Return()

		useCase.InvalidateSession("token")
		next.AssertExpectations(t)
	})
}
