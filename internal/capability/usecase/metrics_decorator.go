package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/entitygate/internal/auth/domain"
	capabilityDomain "github.com/allisson/entitygate/internal/capability/domain"
	"github.com/allisson/entitygate/internal/metrics"
)

// capabilityUseCaseWithMetrics decorates CapabilityUseCase with metrics instrumentation.
type capabilityUseCaseWithMetrics struct {
	next    CapabilityUseCase
	metrics metrics.BusinessMetrics
}

// NewCapabilityUseCaseWithMetrics wraps a CapabilityUseCase with metrics recording.
func NewCapabilityUseCaseWithMetrics(useCase CapabilityUseCase, m metrics.BusinessMetrics) CapabilityUseCase {
	return &capabilityUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// ListVisible records metrics for capability listing operations.
func (c *capabilityUseCaseWithMetrics) ListVisible(
	ctx context.Context,
	entitlements *authDomain.Entitlements,
) ([]View, error) {
	start := time.Now()
	views, err := c.next.ListVisible(ctx, entitlements)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "capability", "list", status)
	c.metrics.RecordDuration(ctx, "capability", "list", time.Since(start), status)

	return views, err
}

// Invoke records metrics for capability invocations.
func (c *capabilityUseCaseWithMetrics) Invoke(
	ctx context.Context,
	name string,
	arguments map[string]any,
	entitlements *authDomain.Entitlements,
) (*capabilityDomain.Result, error) {
	start := time.Now()
	result, err := c.next.Invoke(ctx, name, arguments, entitlements)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "capability", "invoke", status)
	c.metrics.RecordDuration(ctx, "capability", "invoke", time.Since(start), status)

	return result, err
}
