package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/credentials/internal/metrics"
	rotationDomain "github.com/allisson/credentials/internal/rotation/domain"
)

// rotationSchedulerUseCaseWithMetrics decorates RotationSchedulerUseCase with metrics instrumentation.
type rotationSchedulerUseCaseWithMetrics struct {
	next    RotationSchedulerUseCase
	metrics metrics.BusinessMetrics
}

// NewRotationSchedulerUseCaseWithMetrics wraps a RotationSchedulerUseCase with metrics recording.
func NewRotationSchedulerUseCaseWithMetrics(
	useCase RotationSchedulerUseCase,
	m metrics.BusinessMetrics,
) RotationSchedulerUseCase {
	return &rotationSchedulerUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *rotationSchedulerUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "rotation", operation, status)
	r.metrics.RecordDuration(ctx, "rotation", operation, time.Since(start), status)
}

// Rotate records metrics for rotation operations.
func (r *rotationSchedulerUseCaseWithMetrics) Rotate(
	ctx context.Context,
	input rotationDomain.RotateInput,
) (*rotationDomain.RotationRecord, error) {
	start := time.Now()
	record, err := r.next.Rotate(ctx, input)
	r.record(ctx, "rotate", start, err)
	return record, err
}

// ExpireGrace records metrics for grace expiry operations.
func (r *rotationSchedulerUseCaseWithMetrics) ExpireGrace(ctx context.Context, keyID uuid.UUID) error {
	start := time.Now()
	err := r.next.ExpireGrace(ctx, keyID)
	r.record(ctx, "expire_grace", start, err)
	return err
}

// SweepExpired records metrics for sweep passes.
func (r *rotationSchedulerUseCaseWithMetrics) SweepExpired(ctx context.Context) (int, error) {
	start := time.Now()
	processed, err := r.next.SweepExpired(ctx)
	r.record(ctx, "sweep_expired", start, err)
	return processed, err
}

// ListForKey records metrics for rotation history listing operations.
func (r *rotationSchedulerUseCaseWithMetrics) ListForKey(
	ctx context.Context,
	keyID uuid.UUID,
	offset, limit int,
) ([]*rotationDomain.RotationRecord, error) {
	start := time.Now()
	records, err := r.next.ListForKey(ctx, keyID, offset, limit)
	r.record(ctx, "rotation_list_for_key", start, err)
	return records, err
}
