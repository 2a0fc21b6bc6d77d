package domain

import (
	"github.com/allisson/credentials/internal/errors"
)

// Authorization errors.
var (
	// ErrPrincipalNotFound indicates a principal with the specified ID was not found.
	ErrPrincipalNotFound = errors.Wrap(errors.ErrNotFound, "principal not found")

	// ErrTokenNotFound indicates a token with the specified hash was not found.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrTokenExpired indicates the presented token is expired or revoked.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "token expired")

	// ErrPrincipalLocked indicates the principal is locked out after repeated
	// failed authentication attempts.
	ErrPrincipalLocked = errors.Wrap(errors.ErrUnauthorized, "principal locked")

	// ErrOperationNotAllowed indicates the principal lacks a grant for the operation.
	ErrOperationNotAllowed = errors.Wrap(errors.ErrForbidden, "operation not allowed")
)
