package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrincipalIsAllowed(t *testing.T) {
	tests := []struct {
		name      string
		grants    []Operation
		operation Operation
		want      bool
	}{
		{
			name:      "granted operation",
			grants:    []Operation{KeyCreateOperation, KeyRotateOperation},
			operation: KeyRotateOperation,
			want:      true,
		},
		{
			name:      "missing grant",
			grants:    []Operation{KeyCreateOperation},
			operation: KeyRevokeOperation,
			want:      false,
		},
		{
			name:      "exact match only",
			grants:    []Operation{KeyListOperation},
			operation: KeyGetOperation,
			want:      false,
		},
		{
			name:      "empty operation",
			grants:    AllOperations,
			operation: "",
			want:      false,
		},
		{
			name:      "no grants",
			grants:    nil,
			operation: AuditQueryOperation,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Principal{Grants: tt.grants}
			assert.Equal(t, tt.want, p.IsAllowed(tt.operation))
		})
	}
}

func TestPrincipalIsLocked(t *testing.T) {
	now := time.Now().UTC()

	t.Run("not locked when LockedUntil is nil", func(t *testing.T) {
		p := &Principal{}
		assert.False(t, p.IsLocked(now))
	})

	t.Run("locked before deadline", func(t *testing.T) {
		until := now.Add(time.Minute)
		p := &Principal{LockedUntil: &until}
		assert.True(t, p.IsLocked(now))
	})

	t.Run("unlocked after deadline", func(t *testing.T) {
		until := now.Add(-time.Minute)
		p := &Principal{LockedUntil: &until}
		assert.False(t, p.IsLocked(now))
	})
}

func TestCreatePrincipalInputValidate(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		input := CreatePrincipalInput{
			Name:     "deploy-bot",
			IsActive: true,
			Grants:   []Operation{KeyCreateOperation, KeyRotateOperation},
		}
		assert.NoError(t, input.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		input := CreatePrincipalInput{Grants: []Operation{KeyGetOperation}}
		assert.Error(t, input.Validate())
	})

	t.Run("unknown grant", func(t *testing.T) {
		input := CreatePrincipalInput{
			Name:   "deploy-bot",
			Grants: []Operation{"key:delete"},
		}
		assert.Error(t, input.Validate())
	})

	t.Run("empty grants", func(t *testing.T) {
		input := CreatePrincipalInput{Name: "deploy-bot"}
		assert.Error(t, input.Validate())
	})
}

func TestPrincipalContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		p := &Principal{Name: "admin"}
		ctx := WithPrincipal(context.Background(), p)

		got, ok := PrincipalFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, p, got)
		assert.Equal(t, "admin", PrincipalName(ctx))
	})

	t.Run("falls back to system principal", func(t *testing.T) {
		ctx := context.Background()

		_, ok := PrincipalFromContext(ctx)
		assert.False(t, ok)
		assert.Equal(t, SystemPrincipal, PrincipalName(ctx))
	})
}

func TestTokenIsExpired(t *testing.T) {
	now := time.Now().UTC()

	token := &Token{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, token.IsExpired(now))
	assert.True(t, token.IsExpired(now.Add(2*time.Hour)))
	assert.True(t, token.IsExpired(token.ExpiresAt))
}
