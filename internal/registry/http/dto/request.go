// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	registryDomain "github.com/allisson/credentials/internal/registry/domain"
	customValidation "github.com/allisson/credentials/internal/validation"
)

// CreateKeyRequest contains the parameters for registering a new credential.
type CreateKeyRequest struct {
	Name        string `json:"name" binding:"required"`
	SystemName  string `json:"system_name" binding:"required"`
	SystemType  string `json:"system_type" binding:"required"`
	Environment string `json:"environment" binding:"required"`
	KeyRef      string `json:"key_ref" binding:"required"`
}

// Validate checks if the create key request is valid.
func (r *CreateKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank),
		validation.Field(&r.SystemName, validation.Required, customValidation.Identifier),
		validation.Field(&r.SystemType, validation.Required, customValidation.Identifier),
		validation.Field(&r.Environment, validation.Required, customValidation.Identifier),
		validation.Field(&r.KeyRef, validation.Required, customValidation.NoWhitespace),
	)
}

// ToInput converts the request into the domain input.
func (r *CreateKeyRequest) ToInput() registryDomain.CreateKeyInput {
	return registryDomain.CreateKeyInput{
		Name:        r.Name,
		SystemName:  r.SystemName,
		SystemType:  r.SystemType,
		Environment: r.Environment,
		KeyRef:      r.KeyRef,
	}
}
