// Package service provides the secret store confirmation step used during
// rotation. New key material must be reachable in the external store before a
// rotation is committed.
package service

import (
	"context"
	"fmt"
	"time"

	"gocloud.dev/secrets"

	apperrors "github.com/allisson/credentials/internal/errors"
	rotationDomain "github.com/allisson/credentials/internal/rotation/domain"

	// Register all secret store provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// SecretStoreConfirmer verifies that the secret store holding the actual key
// material is reachable before a rotation is committed.
type SecretStoreConfirmer interface {
	// Confirm probes the secret store for the given key reference and version.
	// Returns ErrSecretStoreUnavailable when the store can't be reached within
	// the configured timeout.
	Confirm(ctx context.Context, keyRef string, version uint) error
}

// keeperConfirmer implements SecretStoreConfirmer using a gocloud.dev secrets
// keeper. The probe is an encrypt/decrypt round trip, which exercises the
// store's key without reading or writing any stored secret.
type keeperConfirmer struct {
	keeper  *secrets.Keeper
	timeout time.Duration
}

// NewKeeperConfirmer opens a secrets keeper for the configured provider URI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func NewKeeperConfirmer(
	ctx context.Context,
	keyURI string,
	timeout time.Duration,
) (SecretStoreConfirmer, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open secret store keeper: %w", err)
	}
	return &keeperConfirmer{keeper: keeper, timeout: timeout}, nil
}

// Confirm runs a bounded encrypt/decrypt round trip against the secret store.
func (k *keeperConfirmer) Confirm(ctx context.Context, keyRef string, version uint) error {
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(rotationDomain.ErrSecretStoreUnavailable, err.Error())
	}

	probe := []byte(fmt.Sprintf("%s#%d", keyRef, version))

	ciphertext, err := k.keeper.Encrypt(ctx, probe)
	if err != nil {
		return apperrors.Wrap(rotationDomain.ErrSecretStoreUnavailable, err.Error())
	}
	if _, err := k.keeper.Decrypt(ctx, ciphertext); err != nil {
		return apperrors.Wrap(rotationDomain.ErrSecretStoreUnavailable, err.Error())
	}
	return nil
}

// noOpConfirmer accepts every confirmation. Used when no secret store URI is
// configured, for deployments where key material is managed out of band.
type noOpConfirmer struct{}

// NewNoOpConfirmer creates a confirmer that accepts every confirmation.
func NewNoOpConfirmer() SecretStoreConfirmer {
	return &noOpConfirmer{}
}

// Confirm always succeeds.
func (n *noOpConfirmer) Confirm(_ context.Context, _ string, _ uint) error {
	return nil
}
