// Package domain contains the core rotation types. A rotation record tracks a
// single version bump of a credential and the grace window during which the
// previous version remains usable.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	customValidation "github.com/allisson/credentials/internal/validation"
)

// RotationRecord represents one rotation of a credential. A record is open
// until the grace window is closed, at which point completedAt is set.
type RotationRecord struct {
	ID             uuid.UUID
	KeyID          uuid.UUID
	OldVersion     uint
	NewVersion     uint
	InitiatedAt    time.Time
	GraceExpiresAt time.Time
	CompletedAt    *time.Time
}

// IsCompleted checks whether the rotation's grace window has been closed.
func (r *RotationRecord) IsCompleted() bool {
	return r.CompletedAt != nil
}

// IsGraceExpired checks whether the grace window has elapsed at the given time.
func (r *RotationRecord) IsGraceExpired(now time.Time) bool {
	return !now.Before(r.GraceExpiresAt)
}

// RotateInput contains the parameters for initiating a credential rotation.
// A zero GracePeriod selects the configured default.
type RotateInput struct {
	KeyID       uuid.UUID
	GracePeriod time.Duration
}

// Validate checks if the rotate input is valid.
func (i RotateInput) Validate() error {
	if i.KeyID == uuid.Nil {
		return customValidation.WrapValidationError(fmt.Errorf("key_id: must not be empty"))
	}
	if i.GracePeriod < 0 {
		return customValidation.WrapValidationError(fmt.Errorf("grace_period: must not be negative"))
	}
	return nil
}
