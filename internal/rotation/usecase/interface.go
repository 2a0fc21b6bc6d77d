// Package usecase defines the interfaces and implementations for rotation
// scheduling. Rotations are fenced through the credential status machine so
// at most one is in flight per credential, and every commit carries its audit
// entry in the same transaction.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credentials/internal/audit/domain"
	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	registryDomain "github.com/allisson/credentials/internal/registry/domain"
	rotationDomain "github.com/allisson/credentials/internal/rotation/domain"
)

// RotationRecordRepository defines the interface for RotationRecord persistence operations.
type RotationRecordRepository interface {
	Create(ctx context.Context, record *rotationDomain.RotationRecord) error
	// GetOpenForKey returns the open record for a credential. At most one
	// rotation is open per credential at a time.
	GetOpenForKey(ctx context.Context, keyID uuid.UUID) (*rotationDomain.RotationRecord, error)
	Complete(ctx context.Context, id uuid.UUID, completedAt time.Time) error
	// ListDue returns open records whose grace window elapsed at now, oldest
	// deadline first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*rotationDomain.RotationRecord, error)
	ListForKey(ctx context.Context, keyID uuid.UUID, offset, limit int) ([]*rotationDomain.RotationRecord, error)
}

// CredentialStore exposes the credential lifecycle operations the scheduler
// drives: reads, optimistic status transitions and the rotation commit.
type CredentialStore interface {
	Get(ctx context.Context, id uuid.UUID) (*registryDomain.Credential, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to registryDomain.Status) error
	CompleteRotation(ctx context.Context, id uuid.UUID, newVersion uint, rotatedAt time.Time) error
}

// SecretStoreConfirmer verifies the external secret store is reachable before
// a rotation commits.
type SecretStoreConfirmer interface {
	Confirm(ctx context.Context, keyRef string, version uint) error
}

// AuthorizationGate decides whether the principal carried by the context may
// perform an operation.
type AuthorizationGate interface {
	Authorize(ctx context.Context, operation authzDomain.Operation) error
}

// AuditAppender appends lifecycle events to the audit log.
type AuditAppender interface {
	Append(
		ctx context.Context,
		action auditDomain.Action,
		subjectID uuid.UUID,
		principal string,
		detail map[string]any,
	) error
}

// RotationSchedulerUseCase defines the interface for rotation business logic.
type RotationSchedulerUseCase interface {
	// Rotate bumps a credential to its next version after confirming the new
	// material with the secret store. The credential enters Deprecated for the
	// grace window. Exactly one concurrent caller succeeds per credential.
	Rotate(ctx context.Context, input rotationDomain.RotateInput) (*rotationDomain.RotationRecord, error)
	// ExpireGrace closes the grace window of a credential whose deadline has
	// passed, revoking it. A no-op when no window is due.
	ExpireGrace(ctx context.Context, keyID uuid.UUID) error
	// SweepExpired expires every due grace window, returning the number of
	// records processed.
	SweepExpired(ctx context.Context) (int, error)
	ListForKey(ctx context.Context, keyID uuid.UUID, offset, limit int) ([]*rotationDomain.RotationRecord, error)
}
