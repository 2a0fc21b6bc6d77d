package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	authzService "github.com/allisson/credentials/internal/authz/service"
)

// principalUseCase implements PrincipalUseCase.
type principalUseCase struct {
	principalRepo PrincipalRepository
	secretService authzService.SecretService
}

// Create generates and persists a new Principal with a random secret.
// The plain secret is only returned once and must be securely stored by the
// caller. The Argon2id hash is what the database keeps.
func (p *principalUseCase) Create(
	ctx context.Context,
	input *authzDomain.CreatePrincipalInput,
) (*authzDomain.CreatePrincipalOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	plainSecret, hashedSecret, err := p.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	principal := &authzDomain.Principal{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      input.Name,
		Secret:    hashedSecret,
		IsActive:  input.IsActive,
		Grants:    input.Grants,
		CreatedAt: time.Now().UTC(),
	}

	if err := p.principalRepo.Create(ctx, principal); err != nil {
		return nil, err
	}

	return &authzDomain.CreatePrincipalOutput{
		ID:          principal.ID,
		PlainSecret: plainSecret,
	}, nil
}

// NewPrincipalUseCase creates a new PrincipalUseCase with the provided dependencies.
func NewPrincipalUseCase(
	principalRepo PrincipalRepository,
	secretService authzService.SecretService,
) PrincipalUseCase {
	return &principalUseCase{
		principalRepo: principalRepo,
		secretService: secretService,
	}
}
