// Package domain defines the audit log domain models.
//
// The audit log is the append-only, order-preserving record of credential
// lifecycle events. Sequence numbers are gapless and assigned by the audit log
// itself; entries are immutable once appended and chained by hash so that any
// retroactive edit or removal is detectable.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies the lifecycle event recorded by an audit entry.
// Actions are a closed enum, never free text.
type Action string

const (
	// KeyCreatedAction records the creation of a credential.
	KeyCreatedAction Action = "key_created"

	// KeyRotatedAction records a completed rotation (version bump plus grace period start).
	KeyRotatedAction Action = "key_rotated"

	// KeyRevokedAction records a credential reaching the terminal Revoked status,
	// either by grace expiry or explicit revoke.
	KeyRevokedAction Action = "key_revoked"

	// AllocationCreatedAction records a new credential-to-consumer binding.
	AllocationCreatedAction Action = "allocation_created"

	// AllocationUpdatedAction records a scope replacement on an existing active binding.
	AllocationUpdatedAction Action = "allocation_updated"

	// AllocationRevokedAction records the revocation of a binding.
	AllocationRevokedAction Action = "allocation_revoked"

	// OperationFailedAction records a failure that occurred after a state change
	// was durably committed but before its audit entry could confirm.
	OperationFailedAction Action = "operation_failed"

	// SystemRequestAction records a free-form structured event reported by an
	// external system through the API.
	SystemRequestAction Action = "system_request"
)

// IsValid reports whether the action is a known enum value.
func (a Action) IsValid() bool {
	switch a {
	case KeyCreatedAction, KeyRotatedAction, KeyRevokedAction,
		AllocationCreatedAction, AllocationUpdatedAction, AllocationRevokedAction,
		OperationFailedAction, SystemRequestAction:
		return true
	}
	return false
}

// AuditEntry is an immutable, ordered record of a lifecycle event.
//
// PrevHash is the EntryHash of the previous entry (empty for sequence 1);
// EntryHash covers the canonical encoding of this entry plus PrevHash, forming
// a hash chain over the whole log.
type AuditEntry struct {
	Sequence  uint64
	Action    Action
	SubjectID uuid.UUID
	Principal string
	Detail    map[string]any
	PrevHash  []byte
	EntryHash []byte
	CreatedAt time.Time
}

// Filter bounds an audit log query. The zero value selects from the start of
// the log with no action, subject, or time constraints.
type Filter struct {
	// AfterSequence is an exclusive cursor: only entries with a greater
	// sequence are returned.
	AfterSequence uint64
	// Limit caps the number of returned entries.
	Limit int
	// Action, when non-empty, restricts results to one action kind.
	Action Action
	// SubjectID, when non-nil, restricts results to one credential or allocation.
	SubjectID *uuid.UUID
	// CreatedAtFrom / CreatedAtTo bound the entry timestamp (inclusive).
	CreatedAtFrom *time.Time
	CreatedAtTo   *time.Time
}

// VerificationReport summarizes a hash-chain verification walk.
type VerificationReport struct {
	TotalChecked      int64    `json:"total_checked"`
	ValidCount        int64    `json:"valid_count"`
	InvalidCount      int64    `json:"invalid_count"`
	InvalidSequences  []uint64 `json:"invalid_sequences,omitempty"`
	FirstSequence     uint64   `json:"first_sequence"`
	LastSequence      uint64   `json:"last_sequence"`
	SequenceGapsFound bool     `json:"sequence_gaps_found"`
}
