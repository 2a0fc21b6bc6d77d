package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/credentials/internal/errors"
	rotationDomain "github.com/allisson/credentials/internal/rotation/domain"
	"github.com/allisson/credentials/internal/testutil"
)

func newTestRotationRecord(keyID uuid.UUID, graceExpiresAt time.Time) *rotationDomain.RotationRecord {
	return &rotationDomain.RotationRecord{
		ID:             uuid.Must(uuid.NewV7()),
		KeyID:          keyID,
		OldVersion:     1,
		NewVersion:     2,
		InitiatedAt:    time.Now().UTC(),
		GraceExpiresAt: graceExpiresAt,
	}
}

func TestPostgreSQLRotationRecordRepository_CreateAndGetOpen(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLRotationRecordRepository(db)
	ctx := context.Background()
	keyID := testutil.CreateTestCredential(t, db, "postgres", "rotation-create-and-get")

	record := newTestRotationRecord(keyID, time.Now().UTC().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, record))

	got, err := repo.GetOpenForKey(ctx, keyID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, uint(1), got.OldVersion)
	assert.Equal(t, uint(2), got.NewVersion)
	assert.Nil(t, got.CompletedAt)
}

func TestPostgreSQLRotationRecordRepository_Complete(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLRotationRecordRepository(db)
	ctx := context.Background()
	keyID := testutil.CreateTestCredential(t, db, "postgres", "rotation-complete")

	record := newTestRotationRecord(keyID, time.Now().UTC().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, record))
	require.NoError(t, repo.Complete(ctx, record.ID, time.Now().UTC()))

	_, err := repo.GetOpenForKey(ctx, keyID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	t.Run("SecondCompletionFails", func(t *testing.T) {
		err := repo.Complete(ctx, record.ID, time.Now().UTC())
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestPostgreSQLRotationRecordRepository_ListDue(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLRotationRecordRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	dueKey := testutil.CreateTestCredential(t, db, "postgres", "rotation-due")
	pendingKey := testutil.CreateTestCredential(t, db, "postgres", "rotation-pending")
	completedKey := testutil.CreateTestCredential(t, db, "postgres", "rotation-completed")

	due := newTestRotationRecord(dueKey, now.Add(-time.Hour))
	pending := newTestRotationRecord(pendingKey, now.Add(time.Hour))
	completed := newTestRotationRecord(completedKey, now.Add(-2*time.Hour))

	require.NoError(t, repo.Create(ctx, due))
	require.NoError(t, repo.Create(ctx, pending))
	require.NoError(t, repo.Create(ctx, completed))
	require.NoError(t, repo.Complete(ctx, completed.ID, now))

	records, err := repo.ListDue(ctx, now, 100)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, due.ID, records[0].ID)
}

func TestPostgreSQLRotationRecordRepository_ListForKey(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLRotationRecordRepository(db)
	ctx := context.Background()
	keyID := testutil.CreateTestCredential(t, db, "postgres", "rotation-history")

	first := newTestRotationRecord(keyID, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Complete(ctx, first.ID, time.Now().UTC()))

	second := newTestRotationRecord(keyID, time.Now().UTC().Add(time.Hour))
	second.OldVersion = 2
	second.NewVersion = 3
	require.NoError(t, repo.Create(ctx, second))

	records, err := repo.ListForKey(ctx, keyID, 0, 50)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first.ID, records[0].ID)
	assert.Equal(t, second.ID, records[1].ID)
	assert.NotNil(t, records[0].CompletedAt)
}
