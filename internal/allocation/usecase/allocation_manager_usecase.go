package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	allocationDomain "github.com/allisson/credentials/internal/allocation/domain"
	auditDomain "github.com/allisson/credentials/internal/audit/domain"
	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	"github.com/allisson/credentials/internal/database"
	apperrors "github.com/allisson/credentials/internal/errors"
	"github.com/allisson/credentials/internal/keylock"
	registryDomain "github.com/allisson/credentials/internal/registry/domain"
)

// allocationManagerUseCase implements the AllocationManagerUseCase interface.
type allocationManagerUseCase struct {
	txManager      database.TxManager
	allocationRepo AllocationRepository
	credentials    CredentialReader
	auditLog       AuditAppender
	gate           AuthorizationGate
	locks          *keylock.KeyLock
}

// pairLockID scopes the allocation lock to a (credential, consumer) pair so
// that cross-consumer allocations to the same credential proceed concurrently.
func pairLockID(keyID uuid.UUID, consumerID string) string {
	return keyID.String() + ":" + consumerID
}

// Allocate binds a credential to a consumer with the given scope.
func (a *allocationManagerUseCase) Allocate(
	ctx context.Context,
	input allocationDomain.AllocateInput,
) (*allocationDomain.Allocation, error) {
	if err := a.gate.Authorize(ctx, authzDomain.AllocationCreateOperation); err != nil {
		return nil, err
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	release, err := a.locks.Acquire(ctx, pairLockID(input.KeyID, input.ConsumerID))
	if err != nil {
		return nil, err
	}
	defer release()

	credential, err := a.credentials.Get(ctx, input.KeyID)
	if err != nil {
		return nil, err
	}
	if credential.Status == registryDomain.StatusRevoked {
		return nil, registryDomain.ErrCredentialRevoked
	}

	existing, err := a.allocationRepo.GetActiveByKeyAndConsumer(ctx, input.KeyID, input.ConsumerID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		return a.replaceScope(ctx, existing, input.Scope)
	}

	allocation := &allocationDomain.Allocation{
		ID:           uuid.Must(uuid.NewV7()),
		KeyID:        input.KeyID,
		ConsumerType: input.ConsumerType,
		ConsumerID:   input.ConsumerID,
		Scope:        input.Scope,
		CreatedAt:    time.Now().UTC(),
	}

	err = a.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := a.allocationRepo.Create(txCtx, allocation); err != nil {
			return err
		}

		return a.auditLog.Append(
			txCtx,
			auditDomain.AllocationCreatedAction,
			allocation.ID,
			authzDomain.PrincipalName(ctx),
			map[string]any{
				"key_id":        allocation.KeyID.String(),
				"consumer_type": allocation.ConsumerType,
				"consumer_id":   allocation.ConsumerID,
			},
		)
	})
	if err != nil {
		return nil, err
	}

	return allocation, nil
}

// replaceScope updates the scope of an existing active allocation instead of
// creating a duplicate for the same (credential, consumer) pair.
func (a *allocationManagerUseCase) replaceScope(
	ctx context.Context,
	existing *allocationDomain.Allocation,
	scope allocationDomain.Scope,
) (*allocationDomain.Allocation, error) {
	err := a.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := a.allocationRepo.UpdateScope(txCtx, existing.ID, scope); err != nil {
			return err
		}

		return a.auditLog.Append(
			txCtx,
			auditDomain.AllocationUpdatedAction,
			existing.ID,
			authzDomain.PrincipalName(ctx),
			map[string]any{
				"key_id":      existing.KeyID.String(),
				"consumer_id": existing.ConsumerID,
			},
		)
	})
	if err != nil {
		return nil, err
	}

	existing.Scope = scope
	return existing, nil
}

// Revoke deactivates an allocation by setting its revokedAt timestamp.
func (a *allocationManagerUseCase) Revoke(ctx context.Context, id uuid.UUID) error {
	if err := a.gate.Authorize(ctx, authzDomain.AllocationRevokeOperation); err != nil {
		return err
	}

	allocation, err := a.allocationRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !allocation.IsActive() {
		return allocationDomain.ErrAllocationNotFound
	}

	release, err := a.locks.Acquire(ctx, pairLockID(allocation.KeyID, allocation.ConsumerID))
	if err != nil {
		return err
	}
	defer release()

	return a.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := a.allocationRepo.Revoke(txCtx, id, time.Now().UTC()); err != nil {
			return err
		}

		return a.auditLog.Append(
			txCtx,
			auditDomain.AllocationRevokedAction,
			id,
			authzDomain.PrincipalName(ctx),
			map[string]any{
				"key_id":      allocation.KeyID.String(),
				"consumer_id": allocation.ConsumerID,
			},
		)
	})
}

// ListForKey retrieves active allocations for a credential in creation order.
func (a *allocationManagerUseCase) ListForKey(
	ctx context.Context,
	keyID uuid.UUID,
	offset, limit int,
) ([]*allocationDomain.Allocation, error) {
	if err := a.gate.Authorize(ctx, authzDomain.AllocationListOperation); err != nil {
		return nil, err
	}

	return a.allocationRepo.ListForKey(ctx, keyID, offset, limit)
}

// ListForConsumer retrieves active allocations for a consumer in creation order.
func (a *allocationManagerUseCase) ListForConsumer(
	ctx context.Context,
	consumerID string,
	offset, limit int,
) ([]*allocationDomain.Allocation, error) {
	if err := a.gate.Authorize(ctx, authzDomain.AllocationListOperation); err != nil {
		return nil, err
	}

	return a.allocationRepo.ListForConsumer(ctx, consumerID, offset, limit)
}

// NewAllocationManagerUseCase creates a new allocation manager use case instance.
func NewAllocationManagerUseCase(
	txManager database.TxManager,
	allocationRepo AllocationRepository,
	credentials CredentialReader,
	auditLog AuditAppender,
	gate AuthorizationGate,
	locks *keylock.KeyLock,
) AllocationManagerUseCase {
	return &allocationManagerUseCase{
		txManager:      txManager,
		allocationRepo: allocationRepo,
		credentials:    credentials,
		auditLog:       auditLog,
		gate:           gate,
		locks:          locks,
	}
}
