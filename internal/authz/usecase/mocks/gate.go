// Package mocks provides mock implementations for testing gate consumers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	authzDomain "github.com/allisson/credentials/internal/authz/domain"
)

// MockAuthorizationGate is a mock implementation of the authorization gate
// consumed by every privileged use case.
type MockAuthorizationGate struct {
	mock.Mock
}

// Authorize mocks the Authorize method.
func (m *MockAuthorizationGate) Authorize(ctx context.Context, operation authzDomain.Operation) error {
	args := m.Called(ctx, operation)
	return args.Error(0)
}

// AllowAll returns a gate mock that authorizes every operation.
func AllowAll() *MockAuthorizationGate {
	gate := &MockAuthorizationGate{}
	gate.On("Authorize", mock.Anything, mock.Anything).Return(nil)
	return gate
}
