package domain

import (
	apperrors "github.com/allisson/credentials/internal/errors"
)

var (
	// ErrCredentialNotFound is returned when a credential lookup finds no row.
	ErrCredentialNotFound = apperrors.Wrap(apperrors.ErrNotFound, "credential not found")
	// ErrInvalidTransition is returned when a status change violates the
	// lifecycle state machine or the current status does not match the
	// expected one during an optimistic transition.
	ErrInvalidTransition = apperrors.Wrap(apperrors.ErrInvalidState, "invalid status transition")
	// ErrCredentialRevoked is returned when an operation targets a revoked credential.
	ErrCredentialRevoked = apperrors.Wrap(apperrors.ErrInvalidState, "credential is revoked")
)
