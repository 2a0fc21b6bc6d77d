// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	rotationDomain "github.com/allisson/credentials/internal/rotation/domain"
)

// RotateRequest contains the parameters for initiating a rotation. A zero or
// absent grace period selects the configured default.
type RotateRequest struct {
	GracePeriodSeconds int `json:"grace_period_seconds"`
}

// Validate checks if the rotate request is valid.
func (r *RotateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.GracePeriodSeconds, validation.Min(0)),
	)
}

// ToInput converts the request into the domain input for the given credential.
func (r *RotateRequest) ToInput(keyID uuid.UUID) rotationDomain.RotateInput {
	return rotationDomain.RotateInput{
		KeyID:       keyID,
		GracePeriod: time.Duration(r.GracePeriodSeconds) * time.Second,
	}
}
