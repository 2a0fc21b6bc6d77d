// Package mocks provides mock implementations for testing registry use cases
// and their consumers.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	registryDomain "github.com/allisson/credentials/internal/registry/domain"
)

// MockCredentialRepository is a mock implementation of CredentialRepository for testing.
type MockCredentialRepository struct {
	mock.Mock
}

// Create mocks the Create method of CredentialRepository.
func (m *MockCredentialRepository) Create(
	ctx context.Context,
	credential *registryDomain.Credential,
) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}

// Get mocks the Get method of CredentialRepository.
func (m *MockCredentialRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*registryDomain.Credential, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Credential), args.Error(1)
}

// List mocks the List method of CredentialRepository.
func (m *MockCredentialRepository) List(
	ctx context.Context,
	filter registryDomain.Filter,
	offset, limit int,
) ([]*registryDomain.Credential, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registryDomain.Credential), args.Error(1)
}

// UpdateStatus mocks the UpdateStatus method of CredentialRepository.
func (m *MockCredentialRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to registryDomain.Status,
) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

// CompleteRotation mocks the CompleteRotation method of CredentialRepository.
func (m *MockCredentialRepository) CompleteRotation(
	ctx context.Context,
	id uuid.UUID,
	newVersion uint,
	rotatedAt time.Time,
) error {
	args := m.Called(ctx, id, newVersion, rotatedAt)
	return args.Error(0)
}

// MockKeyRegistryUseCase is a mock implementation of KeyRegistryUseCase for testing.
type MockKeyRegistryUseCase struct {
	mock.Mock
}

// Create mocks the Create method of KeyRegistryUseCase.
func (m *MockKeyRegistryUseCase) Create(
	ctx context.Context,
	input registryDomain.CreateKeyInput,
) (*registryDomain.Credential, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Credential), args.Error(1)
}

// Get mocks the Get method of KeyRegistryUseCase.
func (m *MockKeyRegistryUseCase) Get(
	ctx context.Context,
	id uuid.UUID,
) (*registryDomain.Credential, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Credential), args.Error(1)
}

// List mocks the List method of KeyRegistryUseCase.
func (m *MockKeyRegistryUseCase) List(
	ctx context.Context,
	filter registryDomain.Filter,
	offset, limit int,
) ([]*registryDomain.Credential, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registryDomain.Credential), args.Error(1)
}

// TransitionStatus mocks the TransitionStatus method of KeyRegistryUseCase.
func (m *MockKeyRegistryUseCase) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to registryDomain.Status,
) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

// Revoke mocks the Revoke method of KeyRegistryUseCase.
func (m *MockKeyRegistryUseCase) Revoke(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
