package usecase

import (
	"context"

	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	apperrors "github.com/allisson/credentials/internal/errors"
)

// authorizationGate implements AuthorizationGate against the principal stored
// in the request context by the authentication middleware.
type authorizationGate struct{}

// Authorize checks that the context carries an authenticated principal holding
// a grant for the operation. Contexts without a principal are rejected with
// ErrUnauthorized before any grant check.
func (a *authorizationGate) Authorize(ctx context.Context, operation authzDomain.Operation) error {
	principal, ok := authzDomain.PrincipalFromContext(ctx)
	if !ok {
		return apperrors.Wrap(apperrors.ErrUnauthorized, "authentication required")
	}

	if !principal.IsAllowed(operation) {
		return authzDomain.ErrOperationNotAllowed
	}

	return nil
}

// NewAuthorizationGate creates the gate consulted by every privileged use case.
func NewAuthorizationGate() AuthorizationGate {
	return &authorizationGate{}
}
