// Package domain defines the credential domain model and its lifecycle state machine.
//
// A credential is a managed reference to secret material held by an external
// secret store. The registry owns the credential's status, rotation version and
// descriptive metadata; it never holds the raw secret bytes.
package domain

import (
	"time"

	validationlib "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/allisson/credentials/internal/validation"
)

// Status represents a credential's position in its lifecycle.
type Status string

const (
	// StatusActive means the credential is live and allocatable.
	StatusActive Status = "active"
	// StatusRotating is the transient fencing state held while a rotation is in flight.
	StatusRotating Status = "rotating"
	// StatusDeprecated means a newer version exists; the old material stays valid
	// until the rotation grace period elapses.
	StatusDeprecated Status = "deprecated"
	// StatusRevoked is terminal. Revoked credentials cannot be rotated,
	// allocated or reactivated.
	StatusRevoked Status = "revoked"
)

// IsValid reports whether the status is one of the known lifecycle states.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusRotating, StatusDeprecated, StatusRevoked:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine permits moving from s to target.
//
// Allowed transitions:
//   - Active -> Rotating (rotation fence acquired)
//   - Rotating -> Deprecated (rotation committed)
//   - Rotating -> Active, Rotating -> Deprecated rollback paths restore the
//     pre-rotation status when the secret store rejects the new material
//   - Deprecated -> Rotating (re-rotation of a deprecated credential)
//   - Deprecated -> Revoked (grace period elapsed)
//   - Active -> Revoked (emergency revoke)
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusActive:
		return target == StatusRotating || target == StatusRevoked
	case StatusRotating:
		return target == StatusDeprecated || target == StatusActive
	case StatusDeprecated:
		return target == StatusRotating || target == StatusRevoked
	case StatusRevoked:
		return false
	}
	return false
}

// Credential represents a managed credential and its lifecycle metadata.
type Credential struct {
	ID             uuid.UUID  // Unique identifier (UUIDv7, never reused)
	Name           string     // Human-readable credential name
	SystemName     string     // Owning system (e.g. "billing-api")
	SystemType     string     // Kind of system (e.g. "service", "database")
	Environment    string     // Deployment environment (e.g. "production")
	Status         Status     // Current lifecycle state
	KeyRef         string     // Opaque reference into the external secret store
	CurrentVersion uint       // Monotonically increasing, bumped on each rotation
	CreatedAt      time.Time
	LastUsedAt     *time.Time // Updated by external usage reporting (nil if never used)
	LastRotatedAt  *time.Time // Nil until the first rotation
}

// CreateKeyInput contains the parameters for registering a new credential.
type CreateKeyInput struct {
	Name        string
	SystemName  string
	SystemType  string
	Environment string
	KeyRef      string
}

// Validate checks that all required descriptive fields are present and well formed.
func (i CreateKeyInput) Validate() error {
	err := validationlib.ValidateStruct(&i,
		validationlib.Field(&i.Name, validationlib.Required, validation.NotBlank, validationlib.Length(1, 255)),
		validationlib.Field(&i.SystemName, validationlib.Required, validation.Identifier, validationlib.Length(1, 255)),
		validationlib.Field(&i.SystemType, validationlib.Required, validation.Identifier, validationlib.Length(1, 100)),
		validationlib.Field(&i.Environment, validationlib.Required, validation.Identifier, validationlib.Length(1, 100)),
		validationlib.Field(&i.KeyRef, validationlib.Required, validation.NoWhitespace, validationlib.Length(1, 512)),
	)
	return validation.WrapValidationError(err)
}

// Filter narrows credential listings. Zero values match everything.
type Filter struct {
	Status      Status
	Environment string
	SystemType  string
}
