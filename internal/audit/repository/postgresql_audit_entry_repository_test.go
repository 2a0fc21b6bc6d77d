package repository

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/credentials/internal/audit/domain"
	"github.com/allisson/credentials/internal/database"
	apperrors "github.com/allisson/credentials/internal/errors"
	"github.com/allisson/credentials/internal/testutil"
)

func newTestAuditEntry(sequence uint64) *auditDomain.AuditEntry {
	hash := sha256.Sum256(fmt.Appendf(nil, "entry-%d", sequence))
	return &auditDomain.AuditEntry{
		Sequence:  sequence,
		Action:    auditDomain.KeyCreatedAction,
		SubjectID: uuid.Must(uuid.NewV7()),
		Principal: "tester",
		Detail:    map[string]any{"name": "payments-key"},
		EntryHash: hash[:],
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestPostgreSQLAuditEntryRepository_CreateAndGetLast(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLAuditEntryRepository(db)
	ctx := context.Background()

	_, err := repo.GetLast(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	first := newTestAuditEntry(1)
	require.NoError(t, repo.Create(ctx, first))

	second := newTestAuditEntry(2)
	second.PrevHash = first.EntryHash
	require.NoError(t, repo.Create(ctx, second))

	last, err := repo.GetLast(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), last.Sequence)
	assert.Equal(t, first.EntryHash, last.PrevHash)
	assert.Equal(t, second.EntryHash, last.EntryHash)
	assert.True(t, second.CreatedAt.Equal(last.CreatedAt))
}

// Concurrent transactions must serialize on the chain head: each appender's
// GetLast may only return once the previous appender's entry is committed, so
// every transaction assigns a distinct, gapless sequence number.
func TestPostgreSQLAuditEntryRepository_ConcurrentTransactionalAppends(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLAuditEntryRepository(db)
	txManager := database.NewTxManager(db)

	const writers = 4
	const appendsPerWriter = 5

	var wg sync.WaitGroup
	errs := make(chan error, writers*appendsPerWriter)

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < appendsPerWriter; i++ {
				err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
					var sequence uint64 = 1
					var prevHash []byte

					last, err := repo.GetLast(ctx)
					switch {
					case err == nil:
						sequence = last.Sequence + 1
						prevHash = last.EntryHash
					case apperrors.Is(err, apperrors.ErrNotFound):
					default:
						return err
					}

					entry := newTestAuditEntry(sequence)
					entry.PrevHash = prevHash
					return repo.Create(ctx, entry)
				})
				if err != nil {
					errs <- err
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	entries, err := repo.List(context.Background(), auditDomain.Filter{Limit: writers * appendsPerWriter})
	require.NoError(t, err)
	require.Len(t, entries, writers*appendsPerWriter)

	for i, entry := range entries {
		assert.Equal(t, uint64(i+1), entry.Sequence)
		if i > 0 {
			assert.Equal(t, entries[i-1].EntryHash, entry.PrevHash)
		}
	}
}
