package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rotationDomain "github.com/allisson/credentials/internal/rotation/domain"
)

// generateLocalSecretsURI generates a base64key:// URI for testing.
func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func TestKeeperConfirmer(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_LocalSecrets", func(t *testing.T) {
		confirmer, err := NewKeeperConfirmer(ctx, generateLocalSecretsURI(t), 5*time.Second)
		require.NoError(t, err)

		assert.NoError(t, confirmer.Confirm(ctx, "store/billing-api/prod", 2))
	})

	t.Run("Error_InvalidURI", func(t *testing.T) {
		confirmer, err := NewKeeperConfirmer(ctx, "invalid://uri", 5*time.Second)
		assert.Error(t, err)
		assert.Nil(t, confirmer)
		assert.Contains(t, err.Error(), "failed to open secret store keeper")
	})

	t.Run("Error_CancelledContext", func(t *testing.T) {
		confirmer, err := NewKeeperConfirmer(ctx, generateLocalSecretsURI(t), 5*time.Second)
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err = confirmer.Confirm(cancelled, "store/billing-api/prod", 2)
		assert.ErrorIs(t, err, rotationDomain.ErrSecretStoreUnavailable)
	})
}

func TestNoOpConfirmer(t *testing.T) {
	confirmer := NewNoOpConfirmer()
	assert.NoError(t, confirmer.Confirm(context.Background(), "store/billing-api/prod", 1))
}
