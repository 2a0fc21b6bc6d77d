package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credentials/internal/audit/domain"
	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	"github.com/allisson/credentials/internal/database"
	apperrors "github.com/allisson/credentials/internal/errors"
	"github.com/allisson/credentials/internal/keylock"
	registryDomain "github.com/allisson/credentials/internal/registry/domain"
)

// keyRegistryUseCase implements the KeyRegistryUseCase interface.
type keyRegistryUseCase struct {
	txManager      database.TxManager
	credentialRepo CredentialRepository
	auditLog       AuditAppender
	gate           AuthorizationGate
	locks          *keylock.KeyLock
}

// Create registers a new credential with status Active and version 1.
func (k *keyRegistryUseCase) Create(
	ctx context.Context,
	input registryDomain.CreateKeyInput,
) (*registryDomain.Credential, error) {
	if err := k.gate.Authorize(ctx, authzDomain.KeyCreateOperation); err != nil {
		return nil, err
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	credential := &registryDomain.Credential{
		ID:             uuid.Must(uuid.NewV7()),
		Name:           input.Name,
		SystemName:     input.SystemName,
		SystemType:     input.SystemType,
		Environment:    input.Environment,
		Status:         registryDomain.StatusActive,
		KeyRef:         input.KeyRef,
		CurrentVersion: 1,
		CreatedAt:      time.Now().UTC(),
	}

	err := k.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := k.credentialRepo.Create(txCtx, credential); err != nil {
			return err
		}

		return k.auditLog.Append(
			txCtx,
			auditDomain.KeyCreatedAction,
			credential.ID,
			authzDomain.PrincipalName(ctx),
			map[string]any{
				"name":        credential.Name,
				"system_name": credential.SystemName,
				"environment": credential.Environment,
			},
		)
	})
	if err != nil {
		return nil, err
	}

	return credential, nil
}

// Get retrieves a credential by its ID.
func (k *keyRegistryUseCase) Get(
	ctx context.Context,
	id uuid.UUID,
) (*registryDomain.Credential, error) {
	if err := k.gate.Authorize(ctx, authzDomain.KeyGetOperation); err != nil {
		return nil, err
	}

	return k.credentialRepo.Get(ctx, id)
}

// List retrieves credentials matching the filter in creation order.
func (k *keyRegistryUseCase) List(
	ctx context.Context,
	filter registryDomain.Filter,
	offset, limit int,
) ([]*registryDomain.Credential, error) {
	if err := k.gate.Authorize(ctx, authzDomain.KeyListOperation); err != nil {
		return nil, err
	}

	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "unknown status filter")
	}

	return k.credentialRepo.List(ctx, filter, offset, limit)
}

// TransitionStatus performs an optimistic status transition guarded by the
// state machine. Callers own locking and transactions; the rotation scheduler
// invokes this while holding the credential's key lock.
func (k *keyRegistryUseCase) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to registryDomain.Status,
) error {
	if !from.CanTransitionTo(to) {
		return registryDomain.ErrInvalidTransition
	}

	return k.credentialRepo.UpdateStatus(ctx, id, from, to)
}

// Revoke performs an emergency revocation. The credential moves directly to
// Revoked from Active or Deprecated, bypassing the rotation grace period.
func (k *keyRegistryUseCase) Revoke(ctx context.Context, id uuid.UUID) error {
	if err := k.gate.Authorize(ctx, authzDomain.KeyRevokeOperation); err != nil {
		return err
	}

	release, err := k.locks.Acquire(ctx, id.String())
	if err != nil {
		return err
	}
	defer release()

	credential, err := k.credentialRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if !credential.Status.CanTransitionTo(registryDomain.StatusRevoked) {
		if credential.Status == registryDomain.StatusRevoked {
			return registryDomain.ErrCredentialRevoked
		}
		return registryDomain.ErrInvalidTransition
	}

	return k.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := k.credentialRepo.UpdateStatus(txCtx, id, credential.Status, registryDomain.StatusRevoked); err != nil {
			return err
		}

		return k.auditLog.Append(
			txCtx,
			auditDomain.KeyRevokedAction,
			id,
			authzDomain.PrincipalName(ctx),
			map[string]any{
				"reason":          "emergency_revoke",
				"previous_status": string(credential.Status),
			},
		)
	})
}

// NewKeyRegistryUseCase creates a new key registry use case instance.
func NewKeyRegistryUseCase(
	txManager database.TxManager,
	credentialRepo CredentialRepository,
	auditLog AuditAppender,
	gate AuthorizationGate,
	locks *keylock.KeyLock,
) KeyRegistryUseCase {
	return &keyRegistryUseCase{
		txManager:      txManager,
		credentialRepo: credentialRepo,
		auditLog:       auditLog,
		gate:           gate,
		locks:          locks,
	}
}
