// Package domain defines the allocation domain model.
//
// An allocation binds a credential to a consumer under a scope: a mapping of
// known permission names to permitted values with exact-match semantics. Any
// richer policy evaluation belongs to an external collaborator.
package domain

import (
	"fmt"
	"time"

	validationlib "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/allisson/credentials/internal/validation"
)

// Permission names accepted as scope keys. Unknown keys are rejected at the
// allocation boundary instead of silently stored.
const (
	ReadPermission   = "read"
	WritePermission  = "write"
	DeletePermission = "delete"
	RotatePermission = "rotate"
	AdminPermission  = "admin"
)

// knownPermissions indexes the accepted scope keys.
var knownPermissions = map[string]struct{}{
	ReadPermission:   {},
	WritePermission:  {},
	DeletePermission: {},
	RotatePermission: {},
	AdminPermission:  {},
}

// Scope maps permission names to permitted values. Matching is exact key and
// value equality with no wildcard or hierarchical semantics.
type Scope map[string]any

// Validate checks that every key is a known permission name and every value is
// a JSON scalar (bool, string or number).
func (s Scope) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("scope must not be empty")
	}
	for key, value := range s {
		if _, ok := knownPermissions[key]; !ok {
			return fmt.Errorf("unknown permission name: %s", key)
		}
		switch value.(type) {
		case bool, string, float64, int, int64:
		default:
			return fmt.Errorf("permission %s: value must be a boolean, string or number", key)
		}
	}
	return nil
}

// Allocation represents a binding of a credential to a consumer.
type Allocation struct {
	ID           uuid.UUID
	KeyID        uuid.UUID // Credential this allocation resolves against
	ConsumerType string    // Kind of consumer (e.g. "server", "pipeline")
	ConsumerID   string    // Opaque consumer identifier
	Scope        Scope
	CreatedAt    time.Time
	RevokedAt    *time.Time // Nil while the allocation is active
}

// IsActive reports whether the allocation has not been revoked.
func (a *Allocation) IsActive() bool {
	return a.RevokedAt == nil
}

// AllocateInput contains the parameters for allocating a credential to a consumer.
type AllocateInput struct {
	KeyID        uuid.UUID
	ConsumerType string
	ConsumerID   string
	Scope        Scope
}

// Validate checks the consumer fields and scope contents.
func (i AllocateInput) Validate() error {
	err := validationlib.ValidateStruct(&i,
		validationlib.Field(&i.ConsumerType, validationlib.Required, validation.Identifier, validationlib.Length(1, 100)),
		validationlib.Field(&i.ConsumerID, validationlib.Required, validation.Identifier, validationlib.Length(1, 255)),
	)
	if err != nil {
		return validation.WrapValidationError(err)
	}
	if i.KeyID == uuid.Nil {
		return validation.WrapValidationError(fmt.Errorf("key_id: must not be empty"))
	}
	if err := i.Scope.Validate(); err != nil {
		return validation.WrapValidationError(err)
	}
	return nil
}
