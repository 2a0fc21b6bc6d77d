package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	authzDomain "github.com/allisson/credentials/internal/authz/domain"
)

// MockTokenUseCase is a mock implementation of the TokenUseCase interface.
type MockTokenUseCase struct {
	mock.Mock
}

// Issue mocks the Issue method.
func (m *MockTokenUseCase) Issue(
	ctx context.Context,
	input *authzDomain.IssueTokenInput,
) (*authzDomain.IssueTokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.IssueTokenOutput), args.Error(1)
}

// Authenticate mocks the Authenticate method.
func (m *MockTokenUseCase) Authenticate(ctx context.Context, tokenHash string) (*authzDomain.Principal, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.Principal), args.Error(1)
}

// MockPrincipalUseCase is a mock implementation of the PrincipalUseCase interface.
type MockPrincipalUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockPrincipalUseCase) Create(
	ctx context.Context,
	input *authzDomain.CreatePrincipalInput,
) (*authzDomain.CreatePrincipalOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.CreatePrincipalOutput), args.Error(1)
}
