package domain

import (
	"github.com/allisson/credentials/internal/errors"
)

// Audit log errors.
var (
	// ErrAuditEntryNotFound indicates no audit entry matched the query.
	ErrAuditEntryNotFound = errors.Wrap(errors.ErrNotFound, "audit entry not found")

	// ErrChainInvalid indicates the hash chain failed verification: an entry was
	// edited, removed, or reordered after being appended.
	ErrChainInvalid = errors.New("audit chain invalid")

	// ErrInvalidAction indicates an unknown action kind was supplied.
	ErrInvalidAction = errors.Wrap(errors.ErrInvalidInput, "invalid audit action")
)
