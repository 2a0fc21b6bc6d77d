package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/credentials/internal/validation"

	validationlib "github.com/jellydator/validation"
)

// Principal represents an authenticated caller with a set of operation grants.
// Principals authenticate with a secret, exchange it for a bearer token, and
// the token carries their identity on subsequent requests.
type Principal struct {
	ID             uuid.UUID   // Unique identifier (UUIDv7)
	Name           string      // Principal name, recorded on audit entries
	Secret         string      //nolint:gosec // hashed principal secret (not plaintext)
	IsActive       bool        // Whether the principal can authenticate
	Grants         []Operation // Operations this principal may perform
	FailedAttempts int         // Consecutive failed authentication attempts
	LockedUntil    *time.Time  // Lockout deadline (nil if not locked)
	CreatedAt      time.Time
}

// IsAllowed reports whether the principal holds a grant for the operation.
// Matching is exact: a grant for "key:rotate" does not imply "key:revoke".
func (p *Principal) IsAllowed(operation Operation) bool {
	if operation == "" {
		return false
	}
	return slices.Contains(p.Grants, operation)
}

// IsLocked reports whether the principal is currently locked out after
// repeated failed authentication attempts.
func (p *Principal) IsLocked(now time.Time) bool {
	return p.LockedUntil != nil && now.Before(*p.LockedUntil)
}

// CreatePrincipalInput contains the parameters for creating a new principal.
// The secret is generated server-side and cannot be chosen by the caller.
type CreatePrincipalInput struct {
	Name     string
	IsActive bool
	Grants   []Operation
}

// Validate checks the principal name and that every grant is a known operation.
func (i CreatePrincipalInput) Validate() error {
	err := validationlib.ValidateStruct(&i,
		validationlib.Field(&i.Name, validationlib.Required, validation.Identifier, validationlib.Length(1, 255)),
		validationlib.Field(&i.Grants, validationlib.Required, validationlib.By(func(value any) error {
			grants, ok := value.([]Operation)
			if !ok {
				return validationlib.NewError("validation_grants", "must be a list of operations")
			}
			for _, g := range grants {
				if !g.IsValid() {
					return validationlib.NewError("validation_grants", "unknown operation: "+string(g))
				}
			}
			return nil
		})),
	)
	return validation.WrapValidationError(err)
}

// CreatePrincipalOutput contains the result of creating a new principal.
// The plain secret is returned exactly once and is not retrievable afterwards.
type CreatePrincipalOutput struct {
	ID          uuid.UUID
	PlainSecret string
}
