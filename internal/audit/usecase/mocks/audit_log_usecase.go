// Package mocks provides mock implementations for testing audit log consumers.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/credentials/internal/audit/domain"
)

// MockAuditLogUseCase is a mock implementation of AuditLogUseCase for testing.
type MockAuditLogUseCase struct {
	mock.Mock
}

// Append mocks the Append method of AuditLogUseCase.
func (m *MockAuditLogUseCase) Append(
	ctx context.Context,
	action auditDomain.Action,
	subjectID uuid.UUID,
	principal string,
	detail map[string]any,
) error {
	args := m.Called(ctx, action, subjectID, principal, detail)
	return args.Error(0)
}

// List mocks the List method of AuditLogUseCase.
func (m *MockAuditLogUseCase) List(
	ctx context.Context,
	filter auditDomain.Filter,
) ([]*auditDomain.AuditEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditEntry), args.Error(1)
}

// Verify mocks the Verify method of AuditLogUseCase.
func (m *MockAuditLogUseCase) Verify(
	ctx context.Context,
	createdAtFrom, createdAtTo *time.Time,
) (*auditDomain.VerificationReport, error) {
	args := m.Called(ctx, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.VerificationReport), args.Error(1)
}
