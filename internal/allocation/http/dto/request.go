// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	allocationDomain "github.com/allisson/credentials/internal/allocation/domain"
	customValidation "github.com/allisson/credentials/internal/validation"
)

// AllocateRequest contains the parameters for binding a credential to a consumer.
type AllocateRequest struct {
	KeyID        string         `json:"key_id" binding:"required"`
	ConsumerType string         `json:"consumer_type" binding:"required"`
	ConsumerID   string         `json:"consumer_id" binding:"required"`
	Scope        map[string]any `json:"scope" binding:"required"`
}

// Validate checks if the allocate request is valid.
func (r *AllocateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.KeyID, validation.Required, customValidation.UUID),
		validation.Field(&r.ConsumerType, validation.Required, customValidation.Identifier),
		validation.Field(&r.ConsumerID, validation.Required, customValidation.Identifier),
		validation.Field(&r.Scope, validation.Required),
	)
}

// ToInput converts the request into the domain input.
func (r *AllocateRequest) ToInput() allocationDomain.AllocateInput {
	keyID, _ := uuid.Parse(r.KeyID)

	return allocationDomain.AllocateInput{
		KeyID:        keyID,
		ConsumerType: r.ConsumerType,
		ConsumerID:   r.ConsumerID,
		Scope:        allocationDomain.Scope(r.Scope),
	}
}
