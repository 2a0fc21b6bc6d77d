// Package mocks provides mock implementations for testing allocation use cases
// and their consumers.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	allocationDomain "github.com/allisson/credentials/internal/allocation/domain"
)

// MockAllocationRepository is a mock implementation of AllocationRepository for testing.
type MockAllocationRepository struct {
	mock.Mock
}

// Create mocks the Create method of AllocationRepository.
func (m *MockAllocationRepository) Create(
	ctx context.Context,
	allocation *allocationDomain.Allocation,
) error {
	args := m.Called(ctx, allocation)
	return args.Error(0)
}

// Get mocks the Get method of AllocationRepository.
func (m *MockAllocationRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*allocationDomain.Allocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*allocationDomain.Allocation), args.Error(1)
}

// GetActiveByKeyAndConsumer mocks the GetActiveByKeyAndConsumer method of AllocationRepository.
func (m *MockAllocationRepository) GetActiveByKeyAndConsumer(
	ctx context.Context,
	keyID uuid.UUID,
	consumerID string,
) (*allocationDomain.Allocation, error) {
	args := m.Called(ctx, keyID, consumerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*allocationDomain.Allocation), args.Error(1)
}

// UpdateScope mocks the UpdateScope method of AllocationRepository.
func (m *MockAllocationRepository) UpdateScope(
	ctx context.Context,
	id uuid.UUID,
	scope allocationDomain.Scope,
) error {
	args := m.Called(ctx, id, scope)
	return args.Error(0)
}

// Revoke mocks the Revoke method of AllocationRepository.
func (m *MockAllocationRepository) Revoke(
	ctx context.Context,
	id uuid.UUID,
	revokedAt time.Time,
) error {
	args := m.Called(ctx, id, revokedAt)
	return args.Error(0)
}

// ListForKey mocks the ListForKey method of AllocationRepository.
func (m *MockAllocationRepository) ListForKey(
	ctx context.Context,
	keyID uuid.UUID,
	offset, limit int,
) ([]*allocationDomain.Allocation, error) {
	args := m.Called(ctx, keyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*allocationDomain.Allocation), args.Error(1)
}

// ListForConsumer mocks the ListForConsumer method of AllocationRepository.
func (m *MockAllocationRepository) ListForConsumer(
	ctx context.Context,
	consumerID string,
	offset, limit int,
) ([]*allocationDomain.Allocation, error) {
	args := m.Called(ctx, consumerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*allocationDomain.Allocation), args.Error(1)
}

// MockAllocationManagerUseCase is a mock implementation of AllocationManagerUseCase for testing.
type MockAllocationManagerUseCase struct {
	mock.Mock
}

// Allocate mocks the Allocate method of AllocationManagerUseCase.
func (m *MockAllocationManagerUseCase) Allocate(
	ctx context.Context,
	input allocationDomain.AllocateInput,
) (*allocationDomain.Allocation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*allocationDomain.Allocation), args.Error(1)
}

// Revoke mocks the Revoke method of AllocationManagerUseCase.
func (m *MockAllocationManagerUseCase) Revoke(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ListForKey mocks the ListForKey method of AllocationManagerUseCase.
func (m *MockAllocationManagerUseCase) ListForKey(
	ctx context.Context,
	keyID uuid.UUID,
	offset, limit int,
) ([]*allocationDomain.Allocation, error) {
	args := m.Called(ctx, keyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*allocationDomain.Allocation), args.Error(1)
}

// ListForConsumer mocks the ListForConsumer method of AllocationManagerUseCase.
func (m *MockAllocationManagerUseCase) ListForConsumer(
	ctx context.Context,
	consumerID string,
	offset, limit int,
) ([]*allocationDomain.Allocation, error) {
	args := m.Called(ctx, consumerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*allocationDomain.Allocation), args.Error(1)
}
