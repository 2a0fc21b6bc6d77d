// Package usecase implements business logic orchestration for the audit log.
package usecase

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credentials/internal/audit/domain"
	auditService "github.com/allisson/credentials/internal/audit/service"
	apperrors "github.com/allisson/credentials/internal/errors"
)

// verifyBatchSize is the cursor page size used by the verification walk.
const verifyBatchSize = 500

// auditLogUseCase implements AuditLogUseCase.
type auditLogUseCase struct {
	auditRepo AuditEntryRepository
	hasher    auditService.ChainHasher

	// appendMu orders in-process appenders before they hit the database.
	// It is released when Append returns, before the caller's transaction
	// commits, so cross-transaction serialization comes from the repository:
	// GetLast locks the chain head until commit.
	appendMu sync.Mutex
}

// Append records a lifecycle event with the next gapless sequence number.
//
// The last committed entry is read through the caller's transaction context
// with the chain head locked until that transaction commits, so concurrent
// appenders serialize on the head instead of aborting on the sequence primary
// key. A rolled-back operation leaves neither the state change nor the entry,
// and the next append reuses the freed sequence number.
func (a *auditLogUseCase) Append(
	ctx context.Context,
	action auditDomain.Action,
	subjectID uuid.UUID,
	principal string,
	detail map[string]any,
) error {
	if !action.IsValid() {
		return auditDomain.ErrInvalidAction
	}

	a.appendMu.Lock()
	defer a.appendMu.Unlock()

	var sequence uint64 = 1
	var prevHash []byte

	last, err := a.auditRepo.GetLast(ctx)
	switch {
	case err == nil:
		sequence = last.Sequence + 1
		prevHash = last.EntryHash
	case apperrors.Is(err, apperrors.ErrNotFound):
		// Empty log: first entry has sequence 1 and no previous hash
	default:
		return apperrors.Wrap(err, "failed to read audit log head")
	}

	entry := &auditDomain.AuditEntry{
		Sequence:  sequence,
		Action:    action,
		SubjectID: subjectID,
		Principal: principal,
		Detail:    detail,
		PrevHash:  prevHash,
		// Truncated to the column precision so the stored timestamp is
		// exactly the hashed one. Without this MySQL would round sub
		// microsecond fractions on insert.
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	entryHash, err := a.hasher.Hash(entry)
	if err != nil {
		return apperrors.Wrap(err, "failed to hash audit entry")
	}
	entry.EntryHash = entryHash

	if err := a.auditRepo.Create(ctx, entry); err != nil {
		return apperrors.Wrap(err, "failed to append audit entry")
	}

	return nil
}

// List retrieves entries matching the filter ordered by sequence ascending.
func (a *auditLogUseCase) List(
	ctx context.Context,
	filter auditDomain.Filter,
) ([]*auditDomain.AuditEntry, error) {
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	entries, err := a.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}

	return entries, nil
}

// Verify walks the chain in sequence order, recomputing each entry hash and
// checking prev-hash linkage and sequence continuity.
//
// Time-bounded walks verify per-entry hashes only: linkage can only be
// followed from inside the selected range, since the entry before the range
// is not fetched.
func (a *auditLogUseCase) Verify(
	ctx context.Context,
	createdAtFrom, createdAtTo *time.Time,
) (*auditDomain.VerificationReport, error) {
	report := &auditDomain.VerificationReport{}

	// Entries excluded by a time bound naturally interrupt sequence and
	// linkage continuity, so those checks only apply to full-log walks.
	checkContinuity := createdAtFrom == nil && createdAtTo == nil

	var cursor uint64
	var prev *auditDomain.AuditEntry

	for {
		batch, err := a.auditRepo.List(ctx, auditDomain.Filter{
			AfterSequence: cursor,
			Limit:         verifyBatchSize,
			CreatedAtFrom: createdAtFrom,
			CreatedAtTo:   createdAtTo,
		})
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to fetch audit entries for verification")
		}
		if len(batch) == 0 {
			break
		}

		for _, entry := range batch {
			report.TotalChecked++
			if report.FirstSequence == 0 {
				report.FirstSequence = entry.Sequence
			}
			report.LastSequence = entry.Sequence

			valid := a.hasher.Verify(entry) == nil

			if checkContinuity && prev != nil {
				if entry.Sequence != prev.Sequence+1 {
					report.SequenceGapsFound = true
				}
				if valid && !bytes.Equal(entry.PrevHash, prev.EntryHash) {
					valid = false
				}
			}

			if valid {
				report.ValidCount++
			} else {
				report.InvalidCount++
				report.InvalidSequences = append(report.InvalidSequences, entry.Sequence)
			}

			prev = entry
		}

		cursor = batch[len(batch)-1].Sequence
	}

	return report, nil
}

// NewAuditLogUseCase creates a new AuditLogUseCase with the provided dependencies.
func NewAuditLogUseCase(
	auditRepo AuditEntryRepository,
	hasher auditService.ChainHasher,
) AuditLogUseCase {
	return &auditLogUseCase{
		auditRepo: auditRepo,
		hasher:    hasher,
	}
}
