// Package usecase implements principal management, token issuance, and the
// authorization gate consulted by every privileged operation.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/allisson/credentials/internal/authz/domain"
)

// PrincipalRepository defines persistence operations for principals.
// Implementations must support transaction-aware operations via context propagation.
type PrincipalRepository interface {
	// Create stores a new principal in the repository.
	Create(ctx context.Context, principal *authzDomain.Principal) error

	// Get retrieves a principal by ID. Returns ErrPrincipalNotFound if not found.
	Get(ctx context.Context, id uuid.UUID) (*authzDomain.Principal, error)

	// GetByName retrieves a principal by its unique name.
	// Returns ErrPrincipalNotFound if not found.
	GetByName(ctx context.Context, name string) (*authzDomain.Principal, error)

	// UpdateLockState persists the failed-attempt counter and lockout deadline.
	UpdateLockState(ctx context.Context, id uuid.UUID, failedAttempts int, lockedUntil *time.Time) error
}

// TokenRepository defines persistence operations for bearer tokens.
type TokenRepository interface {
	// Create stores a new token in the repository.
	Create(ctx context.Context, token *authzDomain.Token) error

	// GetByTokenHash retrieves a token by its SHA-256 lookup hash.
	// Returns ErrTokenNotFound if not found.
	GetByTokenHash(ctx context.Context, tokenHash string) (*authzDomain.Token, error)
}

// PrincipalUseCase defines business logic for managing principals.
type PrincipalUseCase interface {
	// Create generates a new principal with a server-generated secret. The
	// plain secret is returned exactly once and cannot be recovered later.
	Create(ctx context.Context, input *authzDomain.CreatePrincipalInput) (*authzDomain.CreatePrincipalOutput, error)
}

// TokenUseCase defines business logic for token issuance and authentication.
type TokenUseCase interface {
	// Issue authenticates a principal by name and secret and returns a new
	// bearer token. Repeated failures lock the principal out.
	Issue(ctx context.Context, input *authzDomain.IssueTokenInput) (*authzDomain.IssueTokenOutput, error)

	// Authenticate resolves a token hash to its principal. Returns
	// ErrInvalidCredentials for unknown tokens, ErrTokenExpired for expired
	// or revoked tokens, and ErrPrincipalLocked for locked principals.
	Authenticate(ctx context.Context, tokenHash string) (*authzDomain.Principal, error)
}

// AuthorizationGate decides whether the principal carried by the context may
// perform an operation. Every privileged use case consults the gate before
// doing any work.
type AuthorizationGate interface {
	Authorize(ctx context.Context, operation authzDomain.Operation) error
}
