package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	allocationDomain "github.com/allisson/credentials/internal/allocation/domain"
	"github.com/allisson/credentials/internal/metrics"
)

// allocationManagerUseCaseWithMetrics decorates AllocationManagerUseCase with
// metrics instrumentation.
type allocationManagerUseCaseWithMetrics struct {
	next    AllocationManagerUseCase
	metrics metrics.BusinessMetrics
}

// NewAllocationManagerUseCaseWithMetrics wraps an AllocationManagerUseCase
// with metrics recording.
func NewAllocationManagerUseCaseWithMetrics(
	useCase AllocationManagerUseCase,
	m metrics.BusinessMetrics,
) AllocationManagerUseCase {
	return &allocationManagerUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *allocationManagerUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "allocation", operation, status)
	a.metrics.RecordDuration(ctx, "allocation", operation, time.Since(start), status)
}

// Allocate records metrics for allocation operations.
func (a *allocationManagerUseCaseWithMetrics) Allocate(
	ctx context.Context,
	input allocationDomain.AllocateInput,
) (*allocationDomain.Allocation, error) {
	start := time.Now()
	allocation, err := a.next.Allocate(ctx, input)
	a.record(ctx, "allocation_create", start, err)
	return allocation, err
}

// Revoke records metrics for allocation revocation operations.
func (a *allocationManagerUseCaseWithMetrics) Revoke(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := a.next.Revoke(ctx, id)
	a.record(ctx, "allocation_revoke", start, err)
	return err
}

// ListForKey records metrics for per-credential listing operations.
func (a *allocationManagerUseCaseWithMetrics) ListForKey(
	ctx context.Context,
	keyID uuid.UUID,
	offset, limit int,
) ([]*allocationDomain.Allocation, error) {
	start := time.Now()
	allocations, err := a.next.ListForKey(ctx, keyID, offset, limit)
	a.record(ctx, "allocation_list_for_key", start, err)
	return allocations, err
}

// ListForConsumer records metrics for per-consumer listing operations.
func (a *allocationManagerUseCaseWithMetrics) ListForConsumer(
	ctx context.Context,
	consumerID string,
	offset, limit int,
) ([]*allocationDomain.Allocation, error) {
	start := time.Now()
	allocations, err := a.next.ListForConsumer(ctx, consumerID, offset, limit)
	a.record(ctx, "allocation_list_for_consumer", start, err)
	return allocations, err
}
