package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/credentials/internal/metrics"
	registryDomain "github.com/allisson/credentials/internal/registry/domain"
)

// keyRegistryUseCaseWithMetrics decorates KeyRegistryUseCase with metrics instrumentation.
type keyRegistryUseCaseWithMetrics struct {
	next    KeyRegistryUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyRegistryUseCaseWithMetrics wraps a KeyRegistryUseCase with metrics recording.
func NewKeyRegistryUseCaseWithMetrics(
	useCase KeyRegistryUseCase,
	m metrics.BusinessMetrics,
) KeyRegistryUseCase {
	return &keyRegistryUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (k *keyRegistryUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "registry", operation, status)
	k.metrics.RecordDuration(ctx, "registry", operation, time.Since(start), status)
}

// Create records metrics for credential creation operations.
func (k *keyRegistryUseCaseWithMetrics) Create(
	ctx context.Context,
	input registryDomain.CreateKeyInput,
) (*registryDomain.Credential, error) {
	start := time.Now()
	credential, err := k.next.Create(ctx, input)
	k.record(ctx, "key_create", start, err)
	return credential, err
}

// Get records metrics for credential retrieval operations.
func (k *keyRegistryUseCaseWithMetrics) Get(
	ctx context.Context,
	id uuid.UUID,
) (*registryDomain.Credential, error) {
	start := time.Now()
	credential, err := k.next.Get(ctx, id)
	k.record(ctx, "key_get", start, err)
	return credential, err
}

// List records metrics for credential listing operations.
func (k *keyRegistryUseCaseWithMetrics) List(
	ctx context.Context,
	filter registryDomain.Filter,
	offset, limit int,
) ([]*registryDomain.Credential, error) {
	start := time.Now()
	credentials, err := k.next.List(ctx, filter, offset, limit)
	k.record(ctx, "key_list", start, err)
	return credentials, err
}

// TransitionStatus records metrics for status transition operations.
func (k *keyRegistryUseCaseWithMetrics) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to registryDomain.Status,
) error {
	start := time.Now()
	err := k.next.TransitionStatus(ctx, id, from, to)
	k.record(ctx, "key_transition_status", start, err)
	return err
}

// Revoke records metrics for emergency revocation operations.
func (k *keyRegistryUseCaseWithMetrics) Revoke(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := k.next.Revoke(ctx, id)
	k.record(ctx, "key_revoke", start, err)
	return err
}
