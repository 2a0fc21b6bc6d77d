package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/credentials/internal/audit/domain"
	auditMocks "github.com/allisson/credentials/internal/audit/usecase/mocks"
	authzMocks "github.com/allisson/credentials/internal/authz/usecase/mocks"
	databaseMocks "github.com/allisson/credentials/internal/database/mocks"
	apperrors "github.com/allisson/credentials/internal/errors"
	"github.com/allisson/credentials/internal/keylock"
	registryDomain "github.com/allisson/credentials/internal/registry/domain"
	registryMocks "github.com/allisson/credentials/internal/registry/usecase/mocks"
	rotationDomain "github.com/allisson/credentials/internal/rotation/domain"
	rotationMocks "github.com/allisson/credentials/internal/rotation/usecase/mocks"
)

type rotationFixture struct {
	txManager   *databaseMocks.MockTxManager
	repo        *rotationMocks.MockRotationRecordRepository
	credentials *registryMocks.MockCredentialRepository
	secretStore *rotationMocks.MockSecretStoreConfirmer
	auditLog    *auditMocks.MockAuditLogUseCase
	gate        *authzMocks.MockAuthorizationGate
	useCase     RotationSchedulerUseCase
}

func testSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		DefaultGracePeriod: time.Hour,
		SweepBatchSize:     100,
		SweepConcurrency:   10,
	}
}

func newRotationFixture(t *testing.T) *rotationFixture {
	t.Helper()

	f := &rotationFixture{
		txManager:   databaseMocks.NewMockTxManager(t),
		repo:        &rotationMocks.MockRotationRecordRepository{},
		credentials: &registryMocks.MockCredentialRepository{},
		secretStore: &rotationMocks.MockSecretStoreConfirmer{},
		auditLog:    &auditMocks.MockAuditLogUseCase{},
		gate:        authzMocks.AllowAll(),
	}
	f.useCase = NewRotationSchedulerUseCase(
		f.txManager, f.repo, f.credentials, f.secretStore,
		f.auditLog, f.gate, keylock.New(), testSchedulerConfig(),
	)
	return f
}

func rotatableCredential(status registryDomain.Status) *registryDomain.Credential {
	return &registryDomain.Credential{
		ID:             uuid.Must(uuid.NewV7()),
		Name:           "billing api key",
		SystemName:     "billing-api",
		SystemType:     "service",
		Environment:    "production",
		KeyRef:         "store/billing-api/prod",
		Status:         status,
		CurrentVersion: 1,
		CreatedAt:      time.Now().UTC(),
	}
}

func TestRotationSchedulerUseCase_Rotate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newRotationFixture(t)
		credential := rotatableCredential(registryDomain.StatusActive)

		f.credentials.On("Get", mock.Anything, credential.ID).Return(credential, nil).Once()
		f.credentials.On("UpdateStatus", mock.Anything, credential.ID,
			registryDomain.StatusActive, registryDomain.StatusRotating).Return(nil).Once()
		f.secretStore.On("Confirm", mock.Anything, credential.KeyRef, uint(2)).Return(nil).Once()
		f.repo.On("GetOpenForKey", mock.Anything, credential.ID).
			Return(nil, rotationDomain.ErrRotationNotFound).Once()
		f.credentials.On("CompleteRotation", mock.Anything, credential.ID, uint(2),
			mock.AnythingOfType("time.Time")).Return(nil).Once()
		f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.RotationRecord")).
			Return(nil).Once()
		f.auditLog.On("Append", mock.Anything, auditDomain.KeyRotatedAction,
			credential.ID, "system", mock.Anything).Return(nil).Once()

		record, err := f.useCase.Rotate(ctx, rotationDomain.RotateInput{
			KeyID:       credential.ID,
			GracePeriod: 30 * time.Minute,
		})
		require.NoError(t, err)
		assert.Equal(t, uint(1), record.OldVersion)
		assert.Equal(t, uint(2), record.NewVersion)
		assert.WithinDuration(t, record.InitiatedAt.Add(30*time.Minute), record.GraceExpiresAt, time.Second)
		assert.Nil(t, record.CompletedAt)

		f.credentials.AssertExpectations(t)
		f.repo.AssertExpectations(t)
		f.auditLog.AssertExpectations(t)
	})

	t.Run("ZeroGracePeriodUsesDefault", func(t *testing.T) {
		f := newRotationFixture(t)
		credential := rotatableCredential(registryDomain.StatusActive)

		f.credentials.On("Get", mock.Anything, credential.ID).Return(credential, nil).Once()
		f.credentials.On("UpdateStatus", mock.Anything, credential.ID,
			registryDomain.StatusActive, registryDomain.StatusRotating).Return(nil).Once()
		f.secretStore.On("Confirm", mock.Anything, credential.KeyRef, uint(2)).Return(nil).Once()
		f.repo.On("GetOpenForKey", mock.Anything, credential.ID).
			Return(nil, rotationDomain.ErrRotationNotFound).Once()
		f.credentials.On("CompleteRotation", mock.Anything, credential.ID, uint(2),
			mock.AnythingOfType("time.Time")).Return(nil).Once()
		f.repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		f.auditLog.On("Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
			mock.Anything).Return(nil).Once()

		record, err := f.useCase.Rotate(ctx, rotationDomain.RotateInput{KeyID: credential.ID})
		require.NoError(t, err)
		assert.WithinDuration(t, record.InitiatedAt.Add(time.Hour), record.GraceExpiresAt, time.Second)
	})

	t.Run("SupersedesOpenGraceWindow", func(t *testing.T) {
		f := newRotationFixture(t)
		credential := rotatableCredential(registryDomain.StatusDeprecated)
		open := &rotationDomain.RotationRecord{
			ID:             uuid.Must(uuid.NewV7()),
			KeyID:          credential.ID,
			OldVersion:     0,
			NewVersion:     1,
			InitiatedAt:    time.Now().UTC().Add(-time.Hour),
			GraceExpiresAt: time.Now().UTC().Add(time.Hour),
		}

		f.credentials.On("Get", mock.Anything, credential.ID).Return(credential, nil).Once()
		f.credentials.On("UpdateStatus", mock.Anything, credential.ID,
			registryDomain.StatusDeprecated, registryDomain.StatusRotating).Return(nil).Once()
		f.secretStore.On("Confirm", mock.Anything, credential.KeyRef, uint(2)).Return(nil).Once()
		f.repo.On("GetOpenForKey", mock.Anything, credential.ID).Return(open, nil).Once()
		f.repo.On("Complete", mock.Anything, open.ID, mock.AnythingOfType("time.Time")).
			Return(nil).Once()
		f.credentials.On("CompleteRotation", mock.Anything, credential.ID, uint(2),
			mock.AnythingOfType("time.Time")).Return(nil).Once()
		f.repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		f.auditLog.On("Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
			mock.Anything).Return(nil).Once()

		_, err := f.useCase.Rotate(ctx, rotationDomain.RotateInput{KeyID: credential.ID})
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("RotationAlreadyInFlight", func(t *testing.T) {
		f := newRotationFixture(t)
		credential := rotatableCredential(registryDomain.StatusRotating)

		f.credentials.On("Get", mock.Anything, credential.ID).Return(credential, nil).Once()

		_, err := f.useCase.Rotate(ctx, rotationDomain.RotateInput{KeyID: credential.ID})
		assert.ErrorIs(t, err, apperrors.ErrRotationInProgress)
		assert.Equal(t, 0, f.txManager.Calls)
		f.secretStore.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RevokedCredential", func(t *testing.T) {
		f := newRotationFixture(t)
		credential := rotatableCredential(registryDomain.StatusRevoked)

		f.credentials.On("Get", mock.Anything, credential.ID).Return(credential, nil).Once()

		_, err := f.useCase.Rotate(ctx, rotationDomain.RotateInput{KeyID: credential.ID})
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
		assert.Equal(t, 0, f.txManager.Calls)
	})

	t.Run("StaleStatusMapsToRotationInProgress", func(t *testing.T) {
		f := newRotationFixture(t)
		credential := rotatableCredential(registryDomain.StatusActive)

		f.credentials.On("Get", mock.Anything, credential.ID).Return(credential, nil).Once()
		f.credentials.On("UpdateStatus", mock.Anything, credential.ID,
			registryDomain.StatusActive, registryDomain.StatusRotating).
			Return(registryDomain.ErrInvalidTransition).Once()

		_, err := f.useCase.Rotate(ctx, rotationDomain.RotateInput{KeyID: credential.ID})
		assert.ErrorIs(t, err, apperrors.ErrRotationInProgress)
	})

	t.Run("SecretStoreFailureRestoresStatus", func(t *testing.T) {
		f := newRotationFixture(t)
		credential := rotatableCredential(registryDomain.StatusActive)

		f.credentials.On("Get", mock.Anything, credential.ID).Return(credential, nil).Once()
		f.credentials.On("UpdateStatus", mock.Anything, credential.ID,
			registryDomain.StatusActive, registryDomain.StatusRotating).Return(nil).Once()
		f.secretStore.On("Confirm", mock.Anything, credential.KeyRef, uint(2)).
			Return(rotationDomain.ErrSecretStoreUnavailable).Once()
		f.credentials.On("UpdateStatus", mock.Anything, credential.ID,
			registryDomain.StatusRotating, registryDomain.StatusActive).Return(nil).Once()

		_, err := f.useCase.Rotate(ctx, rotationDomain.RotateInput{KeyID: credential.ID})
		assert.ErrorIs(t, err, rotationDomain.ErrSecretStoreUnavailable)
		assert.Equal(t, 0, f.txManager.Calls)
		f.credentials.AssertExpectations(t)
		f.auditLog.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything,
			mock.Anything, mock.Anything)
	})

	t.Run("RestoreFailureRecordsOperationFailed", func(t *testing.T) {
		f := newRotationFixture(t)
		credential := rotatableCredential(registryDomain.StatusActive)

		f.credentials.On("Get", mock.Anything, credential.ID).Return(credential, nil).Once()
		f.credentials.On("UpdateStatus", mock.Anything, credential.ID,
			registryDomain.StatusActive, registryDomain.StatusRotating).Return(nil).Once()
		f.secretStore.On("Confirm", mock.Anything, credential.KeyRef, uint(2)).
			Return(rotationDomain.ErrSecretStoreUnavailable).Once()
		f.credentials.On("UpdateStatus", mock.Anything, credential.ID,
			registryDomain.StatusRotating, registryDomain.StatusActive).
			Return(assert.AnError).Once()
		f.auditLog.On("Append", mock.Anything, auditDomain.OperationFailedAction,
			credential.ID, "system", mock.Anything).Return(nil).Once()

		_, err := f.useCase.Rotate(ctx, rotationDomain.RotateInput{KeyID: credential.ID})
		assert.ErrorIs(t, err, rotationDomain.ErrSecretStoreUnavailable)
		f.auditLog.AssertExpectations(t)
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		f := newRotationFixture(t)

		_, err := f.useCase.Rotate(ctx, rotationDomain.RotateInput{})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.credentials.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("DeniedBeforeAnyWork", func(t *testing.T) {
		f := newRotationFixture(t)
		f.gate = &authzMocks.MockAuthorizationGate{}
		f.gate.On("Authorize", mock.Anything, mock.Anything).Return(apperrors.ErrForbidden)
		f.useCase = NewRotationSchedulerUseCase(
			f.txManager, f.repo, f.credentials, f.secretStore,
			f.auditLog, f.gate, keylock.New(), testSchedulerConfig(),
		)

		_, err := f.useCase.Rotate(ctx, rotationDomain.RotateInput{KeyID: uuid.Must(uuid.NewV7())})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.credentials.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestRotationSchedulerUseCase_ExpireGrace(t *testing.T) {
	ctx := context.Background()

	dueRecord := func(keyID uuid.UUID) *rotationDomain.RotationRecord {
		return &rotationDomain.RotationRecord{
			ID:             uuid.Must(uuid.NewV7()),
			KeyID:          keyID,
			OldVersion:     1,
			NewVersion:     2,
			InitiatedAt:    time.Now().UTC().Add(-2 * time.Hour),
			GraceExpiresAt: time.Now().UTC().Add(-time.Hour),
		}
	}

	t.Run("RevokesDeprecatedCredential", func(t *testing.T) {
		f := newRotationFixture(t)
		credential := rotatableCredential(registryDomain.StatusDeprecated)
		record := dueRecord(credential.ID)

		f.repo.On("GetOpenForKey", mock.Anything, credential.ID).Return(record, nil).Once()
		f.credentials.On("Get", mock.Anything, credential.ID).Return(credential, nil).Once()
		f.credentials.On("UpdateStatus", mock.Anything, credential.ID,
			registryDomain.StatusDeprecated, registryDomain.StatusRevoked).Return(nil).Once()
		f.repo.On("Complete", mock.Anything, record.ID, mock.AnythingOfType("time.Time")).
			Return(nil).Once()
		f.auditLog.On("Append", mock.Anything, auditDomain.KeyRevokedAction,
			credential.ID, "system",
			map[string]any{
				"reason":      "grace_expired",
				"old_version": uint(1),
				"new_version": uint(2),
			},
		).Return(nil).Once()

		require.NoError(t, f.useCase.ExpireGrace(ctx, credential.ID))
		f.credentials.AssertExpectations(t)
		f.repo.AssertExpectations(t)
		f.auditLog.AssertExpectations(t)
	})

	t.Run("NoOpenRecordIsNoOp", func(t *testing.T) {
		f := newRotationFixture(t)
		keyID := uuid.Must(uuid.NewV7())

		f.repo.On("GetOpenForKey", mock.Anything, keyID).
			Return(nil, rotationDomain.ErrRotationNotFound).Once()

		require.NoError(t, f.useCase.ExpireGrace(ctx, keyID))
		assert.Equal(t, 0, f.txManager.Calls)
	})

	t.Run("GraceStillRunningIsNoOp", func(t *testing.T) {
		f := newRotationFixture(t)
		keyID := uuid.Must(uuid.NewV7())
		record := dueRecord(keyID)
		record.GraceExpiresAt = time.Now().UTC().Add(time.Hour)

		f.repo.On("GetOpenForKey", mock.Anything, keyID).Return(record, nil).Once()

		require.NoError(t, f.useCase.ExpireGrace(ctx, keyID))
		assert.Equal(t, 0, f.txManager.Calls)
		f.credentials.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("AlreadyRevokedClosesRecordWithoutAudit", func(t *testing.T) {
		f := newRotationFixture(t)
		credential := rotatableCredential(registryDomain.StatusRevoked)
		record := dueRecord(credential.ID)

		f.repo.On("GetOpenForKey", mock.Anything, credential.ID).Return(record, nil).Once()
		f.credentials.On("Get", mock.Anything, credential.ID).Return(credential, nil).Once()
		f.repo.On("Complete", mock.Anything, record.ID, mock.AnythingOfType("time.Time")).
			Return(nil).Once()

		require.NoError(t, f.useCase.ExpireGrace(ctx, credential.ID))
		assert.Equal(t, 0, f.txManager.Calls)
		f.auditLog.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything,
			mock.Anything, mock.Anything)
	})
}

func TestRotationSchedulerUseCase_SweepExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("ExpiresEveryDueRecord", func(t *testing.T) {
		f := newRotationFixture(t)

		records := make([]*rotationDomain.RotationRecord, 0, 3)
		for range 3 {
			keyID := uuid.Must(uuid.NewV7())
			record := &rotationDomain.RotationRecord{
				ID:             uuid.Must(uuid.NewV7()),
				KeyID:          keyID,
				OldVersion:     1,
				NewVersion:     2,
				GraceExpiresAt: time.Now().UTC().Add(-time.Minute),
			}
			records = append(records, record)

			credential := rotatableCredential(registryDomain.StatusDeprecated)
			credential.ID = keyID
			f.repo.On("GetOpenForKey", mock.Anything, keyID).Return(record, nil).Once()
			f.credentials.On("Get", mock.Anything, keyID).Return(credential, nil).Once()
			f.credentials.On("UpdateStatus", mock.Anything, keyID,
				registryDomain.StatusDeprecated, registryDomain.StatusRevoked).Return(nil).Once()
			f.repo.On("Complete", mock.Anything, record.ID, mock.AnythingOfType("time.Time")).
				Return(nil).Once()
		}
		f.repo.On("ListDue", mock.Anything, mock.AnythingOfType("time.Time"), 100).
			Return(records, nil).Once()
		f.auditLog.On("Append", mock.Anything, auditDomain.KeyRevokedAction,
			mock.AnythingOfType("uuid.UUID"), "system", mock.Anything).Return(nil).Times(3)

		processed, err := f.useCase.SweepExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, processed)
		f.repo.AssertExpectations(t)
	})

	t.Run("EmptySweep", func(t *testing.T) {
		f := newRotationFixture(t)

		f.repo.On("ListDue", mock.Anything, mock.AnythingOfType("time.Time"), 100).
			Return([]*rotationDomain.RotationRecord{}, nil).Once()

		processed, err := f.useCase.SweepExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, processed)
	})
}

// fakeCredentialStore is a minimal in-memory credential store used to exercise
// real concurrency through the scheduler.
type fakeCredentialStore struct {
	mu         sync.Mutex
	credential *registryDomain.Credential
	// getEntered, when set, is closed on the first Get, and getRelease holds
	// that Get until closed. Together they pin one rotate mid-flight so a test
	// can overlap a second call with it.
	getEntered  chan struct{}
	getRelease  chan struct{}
	enteredOnce sync.Once
}

func (f *fakeCredentialStore) Get(_ context.Context, _ uuid.UUID) (*registryDomain.Credential, error) {
	if f.getEntered != nil {
		f.enteredOnce.Do(func() { close(f.getEntered) })
	}
	if f.getRelease != nil {
		<-f.getRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *f.credential
	return &copied, nil
}

func (f *fakeCredentialStore) UpdateStatus(
	_ context.Context,
	_ uuid.UUID,
	from, to registryDomain.Status,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.credential.Status != from {
		return registryDomain.ErrInvalidTransition
	}
	f.credential.Status = to
	return nil
}

func (f *fakeCredentialStore) CompleteRotation(
	_ context.Context,
	_ uuid.UUID,
	newVersion uint,
	rotatedAt time.Time,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.credential.Status != registryDomain.StatusRotating {
		return registryDomain.ErrInvalidTransition
	}
	f.credential.Status = registryDomain.StatusDeprecated
	f.credential.CurrentVersion = newVersion
	f.credential.LastRotatedAt = &rotatedAt
	return nil
}

// Two rotates of the same key overlapping in time must yield exactly one
// version bump: the second caller fails with ErrRotationInProgress even when
// it starts after the first has already passed its status checks.
func TestRotationSchedulerUseCase_ConcurrentRotate(t *testing.T) {
	ctx := context.Background()
	credential := rotatableCredential(registryDomain.StatusActive)

	entered := make(chan struct{})
	proceed := make(chan struct{})
	store := &fakeCredentialStore{
		credential: credential,
		getEntered: entered,
		getRelease: proceed,
	}

	repo := &rotationMocks.MockRotationRecordRepository{}
	repo.On("GetOpenForKey", mock.Anything, credential.ID).
		Return(nil, rotationDomain.ErrRotationNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	secretStore := &rotationMocks.MockSecretStoreConfirmer{}
	secretStore.On("Confirm", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	auditLog := &auditMocks.MockAuditLogUseCase{}
	auditLog.On("Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything).Return(nil)

	useCase := NewRotationSchedulerUseCase(
		databaseMocks.NewMockTxManager(t), repo, store, secretStore,
		auditLog, authzMocks.AllowAll(), keylock.New(), testSchedulerConfig(),
	)

	firstErr := make(chan error, 1)
	go func() {
		_, err := useCase.Rotate(ctx, rotationDomain.RotateInput{KeyID: credential.ID})
		firstErr <- err
	}()

	// The first rotate holds the key lock and is pinned inside its credential
	// read; the overlapping call must fail without touching the credential.
	<-entered
	_, err := useCase.Rotate(ctx, rotationDomain.RotateInput{KeyID: credential.ID})
	assert.ErrorIs(t, err, apperrors.ErrRotationInProgress)

	close(proceed)
	require.NoError(t, <-firstErr)

	assert.Equal(t, registryDomain.StatusDeprecated, store.credential.Status)
	assert.Equal(t, uint(2), store.credential.CurrentVersion)
}
