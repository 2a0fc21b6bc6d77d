package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	apperrors "github.com/allisson/credentials/internal/errors"
)

func TestPrincipalUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CreatesPrincipalWithGeneratedSecret", func(t *testing.T) {
		principalRepo := &mockPrincipalRepository{}
		secretService := &mockSecretService{}
		useCase := NewPrincipalUseCase(principalRepo, secretService)

		secretService.On("GenerateSecret").Return("plain-secret", "$argon2id$hashed", nil)
		principalRepo.On("Create", ctx, mock.MatchedBy(func(principal *authzDomain.Principal) bool {
			return principal.Name == "rotation-operator" &&
				principal.Secret == "$argon2id$hashed" &&
				principal.IsActive &&
				len(principal.Grants) == 2
		})).Return(nil)

		output, err := useCase.Create(ctx, &authzDomain.CreatePrincipalInput{
			Name:     "rotation-operator",
			IsActive: true,
			Grants: []authzDomain.Operation{
				authzDomain.KeyRotateOperation,
				authzDomain.KeyGetOperation,
			},
		})
		require.NoError(t, err)
		assert.NotEqual(t, "", output.PlainSecret)
		assert.Equal(t, "plain-secret", output.PlainSecret)

		principalRepo.AssertExpectations(t)
	})

	t.Run("Error_UnknownGrantRejected", func(t *testing.T) {
		principalRepo := &mockPrincipalRepository{}
		secretService := &mockSecretService{}
		useCase := NewPrincipalUseCase(principalRepo, secretService)

		_, err := useCase.Create(ctx, &authzDomain.CreatePrincipalInput{
			Name:     "bad-grants",
			IsActive: true,
			Grants:   []authzDomain.Operation{"key:launch"},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		secretService.AssertNotCalled(t, "GenerateSecret")
	})

	t.Run("Error_MissingNameRejected", func(t *testing.T) {
		principalRepo := &mockPrincipalRepository{}
		secretService := &mockSecretService{}
		useCase := NewPrincipalUseCase(principalRepo, secretService)

		_, err := useCase.Create(ctx, &authzDomain.CreatePrincipalInput{
			IsActive: true,
			Grants:   []authzDomain.Operation{authzDomain.KeyGetOperation},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
