package usecase

import (
	"context"
	"time"

	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	"github.com/allisson/credentials/internal/metrics"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *tokenUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "authz", operation, status)
	t.metrics.RecordDuration(ctx, "authz", operation, time.Since(start), status)
}

// Issue records metrics for token issuance operations.
func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	input *authzDomain.IssueTokenInput,
) (*authzDomain.IssueTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Issue(ctx, input)
	t.record(ctx, "token_issue", start, err)
	return output, err
}

// Authenticate records metrics for token authentication operations.
func (t *tokenUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	tokenHash string,
) (*authzDomain.Principal, error) {
	start := time.Now()
	principal, err := t.next.Authenticate(ctx, tokenHash)
	t.record(ctx, "token_authenticate", start, err)
	return principal, err
}
