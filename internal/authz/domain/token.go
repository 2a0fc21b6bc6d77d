package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/credentials/internal/validation"

	validationlib "github.com/jellydator/validation"
)

// Token is a bearer token issued to an authenticated principal. Only a
// SHA-256 lookup hash of the token value is stored.
type Token struct {
	ID          uuid.UUID
	TokenHash   string
	PrincipalID uuid.UUID
	ExpiresAt   time.Time
	RevokedAt   *time.Time
	CreatedAt   time.Time
}

// IsExpired reports whether the token has passed its expiration time.
func (t *Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsRevoked reports whether the token has been explicitly revoked.
func (t *Token) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IssueTokenInput contains the parameters for exchanging a principal secret
// for a bearer token.
type IssueTokenInput struct {
	PrincipalName string
	Secret        string
}

// Validate checks the token issuance input.
func (i IssueTokenInput) Validate() error {
	err := validationlib.ValidateStruct(&i,
		validationlib.Field(&i.PrincipalName, validationlib.Required, validation.Identifier, validationlib.Length(1, 255)),
		validationlib.Field(&i.Secret, validationlib.Required),
	)
	return validation.WrapValidationError(err)
}

// IssueTokenOutput contains the result of a token issuance. The plain token
// is returned exactly once and is not retrievable afterwards.
type IssueTokenOutput struct {
	PlainToken string
	ExpiresAt  time.Time
}
