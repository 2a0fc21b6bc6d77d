package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	authzService "github.com/allisson/credentials/internal/authz/service"
	"github.com/allisson/credentials/internal/config"
)

// tokenUseCase implements TokenUseCase.
type tokenUseCase struct {
	config        *config.Config
	principalRepo PrincipalRepository
	tokenRepo     TokenRepository
	secretService authzService.SecretService
	tokenService  authzService.TokenService
}

// Issue authenticates a principal by name and secret and generates a new
// bearer token with expiration from config.
//
// Unknown principals, inactive principals, and wrong secrets all produce
// ErrInvalidCredentials to prevent enumeration. Each failed secret comparison
// increments the principal's failed-attempt counter; reaching
// AuthMaxFailedAttempts locks the principal out for AuthLockoutDuration.
// A successful issuance clears the counter. All time comparisons use UTC.
func (t *tokenUseCase) Issue(
	ctx context.Context,
	input *authzDomain.IssueTokenInput,
) (*authzDomain.IssueTokenOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	principal, err := t.principalRepo.GetByName(ctx, input.PrincipalName)
	if err != nil {
		if errors.Is(err, authzDomain.ErrPrincipalNotFound) {
			return nil, authzDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now().UTC()

	if principal.IsLocked(now) {
		return nil, authzDomain.ErrPrincipalLocked
	}

	if !principal.IsActive {
		return nil, authzDomain.ErrInvalidCredentials
	}

	if !t.secretService.CompareSecret(input.Secret, principal.Secret) {
		if err := t.recordFailedAttempt(ctx, principal, now); err != nil {
			return nil, err
		}
		return nil, authzDomain.ErrInvalidCredentials
	}

	// Clear the failure counter after a successful authentication.
	if principal.FailedAttempts > 0 || principal.LockedUntil != nil {
		if err := t.principalRepo.UpdateLockState(ctx, principal.ID, 0, nil); err != nil {
			return nil, err
		}
	}

	plainToken, tokenHash, err := t.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	token := &authzDomain.Token{
		ID:          uuid.Must(uuid.NewV7()),
		TokenHash:   tokenHash,
		PrincipalID: principal.ID,
		ExpiresAt:   now.Add(t.config.AuthTokenExpiration),
		RevokedAt:   nil,
		CreatedAt:   now,
	}

	if err := t.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return &authzDomain.IssueTokenOutput{
		PlainToken: plainToken,
		ExpiresAt:  token.ExpiresAt,
	}, nil
}

// recordFailedAttempt bumps the failure counter and sets the lockout deadline
// once the counter reaches the configured threshold.
func (t *tokenUseCase) recordFailedAttempt(
	ctx context.Context,
	principal *authzDomain.Principal,
	now time.Time,
) error {
	failedAttempts := principal.FailedAttempts + 1

	var lockedUntil *time.Time
	if failedAttempts >= t.config.AuthMaxFailedAttempts {
		deadline := now.Add(t.config.AuthLockoutDuration)
		lockedUntil = &deadline
	}

	return t.principalRepo.UpdateLockState(ctx, principal.ID, failedAttempts, lockedUntil)
}

// Authenticate validates a bearer token hash and returns the associated principal.
//
// Unknown tokens produce ErrInvalidCredentials; expired or revoked tokens
// produce ErrTokenExpired; locked principals produce ErrPrincipalLocked.
// Inactive principals produce ErrInvalidCredentials.
func (t *tokenUseCase) Authenticate(ctx context.Context, tokenHash string) (*authzDomain.Principal, error) {
	token, err := t.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, authzDomain.ErrTokenNotFound) {
			return nil, authzDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now().UTC()

	if token.IsExpired(now) || token.IsRevoked() {
		return nil, authzDomain.ErrTokenExpired
	}

	principal, err := t.principalRepo.Get(ctx, token.PrincipalID)
	if err != nil {
		if errors.Is(err, authzDomain.ErrPrincipalNotFound) {
			return nil, authzDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if principal.IsLocked(now) {
		return nil, authzDomain.ErrPrincipalLocked
	}

	if !principal.IsActive {
		return nil, authzDomain.ErrInvalidCredentials
	}

	return principal, nil
}

// NewTokenUseCase creates a new TokenUseCase with the provided dependencies.
func NewTokenUseCase(
	config *config.Config,
	principalRepo PrincipalRepository,
	tokenRepo TokenRepository,
	secretService authzService.SecretService,
	tokenService authzService.TokenService,
) TokenUseCase {
	return &tokenUseCase{
		config:        config,
		principalRepo: principalRepo,
		tokenRepo:     tokenRepo,
		secretService: secretService,
		tokenService:  tokenService,
	}
}
