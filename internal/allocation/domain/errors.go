package domain

import (
	"github.com/allisson/credentials/internal/errors"
)

var (
	// ErrAllocationNotFound indicates the allocation is absent or already revoked.
	ErrAllocationNotFound = errors.Wrap(errors.ErrNotFound, "allocation not found")
)
