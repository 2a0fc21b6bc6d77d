package domain

import (
	"github.com/allisson/credentials/internal/errors"
)

var (
	// ErrRotationNotFound indicates the rotation record doesn't exist.
	ErrRotationNotFound = errors.Wrap(errors.ErrNotFound, "rotation record")

	// ErrSecretStoreUnavailable indicates the external secret store could not
	// confirm the new key material within the configured timeout.
	ErrSecretStoreUnavailable = errors.New("secret store unavailable")
)
