// Package usecase defines the interfaces and implementations for allocation
// management use cases. Allocation mutations are serialized per
// (credential, consumer) pair and audited inside the mutating transaction.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	allocationDomain "github.com/allisson/credentials/internal/allocation/domain"
	auditDomain "github.com/allisson/credentials/internal/audit/domain"
	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	registryDomain "github.com/allisson/credentials/internal/registry/domain"
)

// AllocationRepository defines the interface for Allocation persistence operations.
type AllocationRepository interface {
	Create(ctx context.Context, allocation *allocationDomain.Allocation) error
	Get(ctx context.Context, id uuid.UUID) (*allocationDomain.Allocation, error)
	GetActiveByKeyAndConsumer(ctx context.Context, keyID uuid.UUID, consumerID string) (*allocationDomain.Allocation, error)
	UpdateScope(ctx context.Context, id uuid.UUID, scope allocationDomain.Scope) error
	Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) error
	ListForKey(ctx context.Context, keyID uuid.UUID, offset, limit int) ([]*allocationDomain.Allocation, error)
	ListForConsumer(ctx context.Context, consumerID string, offset, limit int) ([]*allocationDomain.Allocation, error)
}

// CredentialReader resolves credentials without exposing lifecycle mutations.
// The allocation manager holds a non-owning reference to the credential id.
type CredentialReader interface {
	Get(ctx context.Context, id uuid.UUID) (*registryDomain.Credential, error)
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

// AllocationManagerUseCase defines the interface for allocation business logic.
type AllocationManagerUseCase interface {
	// Allocate binds a credential to a consumer. Re-allocating an existing
	// active (key, consumer) pair replaces the scope instead of duplicating.
	Allocate(ctx context.Context, input allocationDomain.AllocateInput) (*allocationDomain.Allocation, error)
	// Revoke deactivates an allocation. Absent or already revoked allocations
	// return not found.
	Revoke(ctx context.Context, id uuid.UUID) error
	ListForKey(ctx context.Context, keyID uuid.UUID, offset, limit int) ([]*allocationDomain.Allocation, error)
	ListForConsumer(ctx context.Context, consumerID string, offset, limit int) ([]*allocationDomain.Allocation, error)
}
