package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	auditDomain "github.com/allisson/credentials/internal/audit/domain"
	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	"github.com/allisson/credentials/internal/database"
	apperrors "github.com/allisson/credentials/internal/errors"
	"github.com/allisson/credentials/internal/keylock"
	registryDomain "github.com/allisson/credentials/internal/registry/domain"
	rotationDomain "github.com/allisson/credentials/internal/rotation/domain"
)

// SchedulerConfig carries the tunables of the rotation scheduler.
type SchedulerConfig struct {
	// DefaultGracePeriod applies when a rotate request doesn't carry one.
	DefaultGracePeriod time.Duration
	// SweepBatchSize caps the due records fetched per sweep pass.
	SweepBatchSize int
	// SweepConcurrency caps the keys expired concurrently per sweep pass.
	SweepConcurrency int
}

// rotationSchedulerUseCase implements the RotationSchedulerUseCase interface.
type rotationSchedulerUseCase struct {
	txManager    database.TxManager
	rotationRepo RotationRecordRepository
	credentials  CredentialStore
	secretStore  SecretStoreConfirmer
	auditLog     AuditAppender
	gate         AuthorizationGate
	locks        *keylock.KeyLock
	config       SchedulerConfig
}

// Rotate bumps a credential to its next version. Of N concurrent rotates of
// the same key exactly one wins and the rest fail with ErrRotationInProgress:
// the per-key lock is held for the whole rotation, so an overlapping caller
// fails immediately instead of observing the winner's committed state and
// rotating again. The optimistic transition into Rotating is the backstop
// against writers outside this process. The secret store must confirm the new
// version before anything is committed; a confirmation failure restores the
// prior status and leaves no trace.
func (r *rotationSchedulerUseCase) Rotate(
	ctx context.Context,
	input rotationDomain.RotateInput,
) (*rotationDomain.RotationRecord, error) {
	if err := r.gate.Authorize(ctx, authzDomain.KeyRotateOperation); err != nil {
		return nil, err
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	gracePeriod := input.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = r.config.DefaultGracePeriod
	}

	release, ok := r.locks.TryAcquire(input.KeyID.String())
	if !ok {
		return nil, apperrors.ErrRotationInProgress
	}
	defer release()

	credential, err := r.credentials.Get(ctx, input.KeyID)
	if err != nil {
		return nil, err
	}

	priorStatus := credential.Status
	switch priorStatus {
	case registryDomain.StatusRotating:
		return nil, apperrors.ErrRotationInProgress
	case registryDomain.StatusRevoked:
		return nil, registryDomain.ErrCredentialRevoked
	}

	if err := r.credentials.UpdateStatus(ctx, input.KeyID, priorStatus, registryDomain.StatusRotating); err != nil {
		if apperrors.Is(err, registryDomain.ErrInvalidTransition) {
			return nil, apperrors.ErrRotationInProgress
		}
		return nil, err
	}

	newVersion := credential.CurrentVersion + 1

	if err := r.secretStore.Confirm(ctx, credential.KeyRef, newVersion); err != nil {
		return nil, r.restorePriorStatus(ctx, input.KeyID, priorStatus, err)
	}

	// A rotation of a Deprecated credential supersedes its open grace window.
	superseded, err := r.rotationRepo.GetOpenForKey(ctx, input.KeyID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, r.restorePriorStatus(ctx, input.KeyID, priorStatus, err)
	}

	now := time.Now().UTC()
	record := &rotationDomain.RotationRecord{
		ID:             uuid.Must(uuid.NewV7()),
		KeyID:          input.KeyID,
		OldVersion:     credential.CurrentVersion,
		NewVersion:     newVersion,
		InitiatedAt:    now,
		GraceExpiresAt: now.Add(gracePeriod),
	}

	err = r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if superseded != nil {
			if err := r.rotationRepo.Complete(txCtx, superseded.ID, now); err != nil {
				return err
			}
		}

		if err := r.credentials.CompleteRotation(txCtx, input.KeyID, newVersion, now); err != nil {
			return err
		}

		if err := r.rotationRepo.Create(txCtx, record); err != nil {
			return err
		}

		return r.auditLog.Append(
			txCtx,
			auditDomain.KeyRotatedAction,
			input.KeyID,
			authzDomain.PrincipalName(ctx),
			map[string]any{
				"old_version":      record.OldVersion,
				"new_version":      record.NewVersion,
				"grace_expires_at": record.GraceExpiresAt.Format(time.RFC3339),
			},
		)
	})
	if err != nil {
		return nil, r.restorePriorStatus(ctx, input.KeyID, priorStatus, err)
	}

	return record, nil
}

// restorePriorStatus rolls the credential back out of Rotating after a failed
// rotation. When even the rollback fails the inconsistency is recorded as an
// operation_failed audit entry so operators can reconcile it.
func (r *rotationSchedulerUseCase) restorePriorStatus(
	ctx context.Context,
	keyID uuid.UUID,
	priorStatus registryDomain.Status,
	cause error,
) error {
	restoreErr := r.credentials.UpdateStatus(ctx, keyID, registryDomain.StatusRotating, priorStatus)
	if restoreErr == nil {
		return cause
	}

	_ = r.auditLog.Append(
		ctx,
		auditDomain.OperationFailedAction,
		keyID,
		authzDomain.PrincipalName(ctx),
		map[string]any{
			"operation":     "rotate",
			"error":         cause.Error(),
			"restore_error": restoreErr.Error(),
			"stuck_status":  string(registryDomain.StatusRotating),
		},
	)

	return apperrors.Wrap(cause, "rotation failed and status restore failed")
}

// ExpireGrace closes a due grace window for one credential. Holding the key
// lock keeps it from racing rotations and emergency revokes.
func (r *rotationSchedulerUseCase) ExpireGrace(ctx context.Context, keyID uuid.UUID) error {
	release, err := r.locks.Acquire(ctx, keyID.String())
	if err != nil {
		return err
	}
	defer release()

	record, err := r.rotationRepo.GetOpenForKey(ctx, keyID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}

	now := time.Now().UTC()
	if !record.IsGraceExpired(now) {
		return nil
	}

	credential, err := r.credentials.Get(ctx, keyID)
	if err != nil {
		return err
	}

	switch credential.Status {
	case registryDomain.StatusDeprecated:
		// fall through to the revoke below
	case registryDomain.StatusRevoked:
		// already revoked out of band, just close the record
		return r.rotationRepo.Complete(ctx, record.ID, now)
	default:
		return nil
	}

	return r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := r.credentials.UpdateStatus(
			txCtx, keyID, registryDomain.StatusDeprecated, registryDomain.StatusRevoked,
		); err != nil {
			return err
		}

		if err := r.rotationRepo.Complete(txCtx, record.ID, now); err != nil {
			return err
		}

		return r.auditLog.Append(
			txCtx,
			auditDomain.KeyRevokedAction,
			keyID,
			authzDomain.PrincipalName(ctx),
			map[string]any{
				"reason":      "grace_expired",
				"old_version": record.OldVersion,
				"new_version": record.NewVersion,
			},
		)
	})
}

// SweepExpired expires every due grace window in one pass. Keys are processed
// concurrently up to the configured limit; per-key ordering is preserved by
// the key locks inside ExpireGrace.
func (r *rotationSchedulerUseCase) SweepExpired(ctx context.Context) (int, error) {
	records, err := r.rotationRepo.ListDue(ctx, time.Now().UTC(), r.config.SweepBatchSize)
	if err != nil {
		return 0, err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.config.SweepConcurrency)

	for _, record := range records {
		group.Go(func() error {
			return r.ExpireGrace(groupCtx, record.KeyID)
		})
	}

	if err := group.Wait(); err != nil {
		return len(records), err
	}
	return len(records), nil
}

// ListForKey retrieves the rotation history of a credential in creation order.
func (r *rotationSchedulerUseCase) ListForKey(
	ctx context.Context,
	keyID uuid.UUID,
	offset, limit int,
) ([]*rotationDomain.RotationRecord, error) {
	if err := r.gate.Authorize(ctx, authzDomain.KeyListOperation); err != nil {
		return nil, err
	}

	return r.rotationRepo.ListForKey(ctx, keyID, offset, limit)
}

// NewRotationSchedulerUseCase creates a new rotation scheduler use case instance.
func NewRotationSchedulerUseCase(
	txManager database.TxManager,
	rotationRepo RotationRecordRepository,
	credentials CredentialStore,
	secretStore SecretStoreConfirmer,
	auditLog AuditAppender,
	gate AuthorizationGate,
	locks *keylock.KeyLock,
	config SchedulerConfig,
) RotationSchedulerUseCase {
	return &rotationSchedulerUseCase{
		txManager:    txManager,
		rotationRepo: rotationRepo,
		credentials:  credentials,
		secretStore:  secretStore,
		auditLog:     auditLog,
		gate:         gate,
		locks:        locks,
		config:       config,
	}
}
