// Package mocks provides mock implementations for testing rotation use cases
// and their consumers.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	rotationDomain "github.com/allisson/credentials/internal/rotation/domain"
)

// MockRotationRecordRepository is a mock implementation of RotationRecordRepository for testing.
type MockRotationRecordRepository struct {
	mock.Mock
}

// Create mocks the Create method of RotationRecordRepository.
func (m *MockRotationRecordRepository) Create(
	ctx context.Context,
	record *rotationDomain.RotationRecord,
) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// GetOpenForKey mocks the GetOpenForKey method of RotationRecordRepository.
func (m *MockRotationRecordRepository) GetOpenForKey(
	ctx context.Context,
	keyID uuid.UUID,
) (*rotationDomain.RotationRecord, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.RotationRecord), args.Error(1)
}

// Complete mocks the Complete method of RotationRecordRepository.
func (m *MockRotationRecordRepository) Complete(
	ctx context.Context,
	id uuid.UUID,
	completedAt time.Time,
) error {
	args := m.Called(ctx, id, completedAt)
	return args.Error(0)
}

// ListDue mocks the ListDue method of RotationRecordRepository.
func (m *MockRotationRecordRepository) ListDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*rotationDomain.RotationRecord, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rotationDomain.RotationRecord), args.Error(1)
}

// ListForKey mocks the ListForKey method of RotationRecordRepository.
func (m *MockRotationRecordRepository) ListForKey(
	ctx context.Context,
	keyID uuid.UUID,
	offset, limit int,
) ([]*rotationDomain.RotationRecord, error) {
	args := m.Called(ctx, keyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rotationDomain.RotationRecord), args.Error(1)
}

// MockSecretStoreConfirmer is a mock implementation of SecretStoreConfirmer for testing.
type MockSecretStoreConfirmer struct {
	mock.Mock
}

// Confirm mocks the Confirm method of SecretStoreConfirmer.
func (m *MockSecretStoreConfirmer) Confirm(
	ctx context.Context,
	keyRef string,
	version uint,
) error {
	args := m.Called(ctx, keyRef, version)
	return args.Error(0)
}

// MockRotationSchedulerUseCase is a mock implementation of RotationSchedulerUseCase for testing.
type MockRotationSchedulerUseCase struct {
	mock.Mock
}

// Rotate mocks the Rotate method of RotationSchedulerUseCase.
func (m *MockRotationSchedulerUseCase) Rotate(
	ctx context.Context,
	input rotationDomain.RotateInput,
) (*rotationDomain.RotationRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.RotationRecord), args.Error(1)
}

// ExpireGrace mocks the ExpireGrace method of RotationSchedulerUseCase.
func (m *MockRotationSchedulerUseCase) ExpireGrace(ctx context.Context, keyID uuid.UUID) error {
	args := m.Called(ctx, keyID)
	return args.Error(0)
}

// SweepExpired mocks the SweepExpired method of RotationSchedulerUseCase.
func (m *MockRotationSchedulerUseCase) SweepExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// ListForKey mocks the ListForKey method of RotationSchedulerUseCase.
func (m *MockRotationSchedulerUseCase) ListForKey(
	ctx context.Context,
	keyID uuid.UUID,
	offset, limit int,
) ([]*rotationDomain.RotationRecord, error) {
	args := m.Called(ctx, keyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rotationDomain.RotationRecord), args.Error(1)
}
