// Package usecase defines the interfaces and implementations for credential
// lifecycle use cases. Use cases guard every operation through the
// authorization gate, serialize per-credential mutations, and append audit
// entries inside the same transaction as the state change.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credentials/internal/audit/domain"
	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	registryDomain "github.com/allisson/credentials/internal/registry/domain"
)

// CredentialRepository defines the interface for Credential persistence operations.
type CredentialRepository interface {
	Create(ctx context.Context, credential *registryDomain.Credential) error
	Get(ctx context.Context, id uuid.UUID) (*registryDomain.Credential, error)
	List(ctx context.Context, filter registryDomain.Filter, offset, limit int) ([]*registryDomain.Credential, error)
	// UpdateStatus applies an optimistic status transition guarded by the
	// expected current status. Returns ErrInvalidTransition when the stored
	// status no longer equals from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to registryDomain.Status) error
	// CompleteRotation commits a rotation: Rotating -> Deprecated with the
	// version bump and lastRotatedAt applied in a single update.
	CompleteRotation(ctx context.Context, id uuid.UUID, newVersion uint, rotatedAt time.Time) error
}

// AuthorizationGate decides whether the principal carried by the context may
// perform an operation. Every privileged use case consults it before any
// state mutation or audit append.
type AuthorizationGate interface {
	Authorize(ctx context.Context, operation authzDomain.Operation) error
}

// AuditAppender appends lifecycle events to the audit log. Implemented by the
// audit log use case; appends join the caller's transaction when one is present.
type AuditAppender interface {
	Append(
		ctx context.Context,
		action auditDomain.Action,
		subjectID uuid.UUID,
		principal string,
		detail map[string]any,
	) error
}

// KeyRegistryUseCase defines the interface for credential lifecycle business logic.
type KeyRegistryUseCase interface {
	Create(ctx context.Context, input registryDomain.CreateKeyInput) (*registryDomain.Credential, error)
	Get(ctx context.Context, id uuid.UUID) (*registryDomain.Credential, error)
	List(ctx context.Context, filter registryDomain.Filter, offset, limit int) ([]*registryDomain.Credential, error)
	// TransitionStatus performs an optimistic status transition. Used by the
	// rotation scheduler; not exposed through the HTTP surface.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to registryDomain.Status) error
	// Revoke performs an emergency revocation, moving an Active or Deprecated
	// credential directly to Revoked.
	Revoke(ctx context.Context, id uuid.UUID) error
}
