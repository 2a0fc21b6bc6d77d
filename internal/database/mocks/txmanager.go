// Package mocks provides test doubles for the database package.
package mocks

import (
	"context"
	"testing"

	"github.com/allisson/credentials/internal/database"
)

// MockTxManager is a TxManager test double that executes the function inline
// without a real transaction. Calls are counted so tests can assert that an
// operation ran (or skipped) its transactional section.
type MockTxManager struct {
	// Calls is the number of WithTx invocations.
	Calls int
	// Err, when set, is returned without executing the function, simulating a
	// transaction begin failure.
	Err error
}

// NewMockTxManager creates a new MockTxManager.
func NewMockTxManager(t *testing.T) *MockTxManager {
	t.Helper()
	return &MockTxManager{}
}

// WithTx executes fn with the given context, mimicking commit-on-nil and
// rollback-on-error by simply propagating fn's error.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx)
}

var _ database.TxManager = (*MockTxManager)(nil)
