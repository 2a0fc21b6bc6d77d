// Package usecase defines business logic interfaces for the audit log.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credentials/internal/audit/domain"
)

// AuditEntryRepository defines persistence operations for audit entries.
// Implementations must support transaction-aware operations via context
// propagation so that an entry commits atomically with the state change it
// records.
type AuditEntryRepository interface {
	// Create stores a new audit entry. The sequence column is the primary key,
	// so concurrent writers racing on the same sequence fail rather than fork
	// the chain.
	Create(ctx context.Context, entry *auditDomain.AuditEntry) error

	// GetLast retrieves the entry with the highest sequence number.
	// Returns ErrAuditEntryNotFound when the log is empty.
	GetLast(ctx context.Context) (*auditDomain.AuditEntry, error)

	// List retrieves entries matching the filter ordered by sequence ascending.
	List(ctx context.Context, filter auditDomain.Filter) ([]*auditDomain.AuditEntry, error)
}

// AuditLogUseCase is the append-only, order-preserving record of lifecycle
// events. Append is the single writer of sequence numbers; callers must treat
// an append failure as failure of the overall operation.
type AuditLogUseCase interface {
	// Append records a lifecycle event. It assigns the next sequence number and
	// chains the entry hash onto the previous entry. When invoked inside a
	// TxManager.WithTx context the entry joins the surrounding transaction.
	Append(
		ctx context.Context,
		action auditDomain.Action,
		subjectID uuid.UUID,
		principal string,
		detail map[string]any,
	) error

	// List retrieves entries matching the filter ordered by sequence ascending.
	// A zero-valued filter with a Limit returns entries from the start of the log.
	List(ctx context.Context, filter auditDomain.Filter) ([]*auditDomain.AuditEntry, error)

	// Verify walks the hash chain over the given time range (nil bounds walk
	// the whole log) and reports gaps and tampered entries.
	Verify(ctx context.Context, createdAtFrom, createdAtTo *time.Time) (*auditDomain.VerificationReport, error)
}
