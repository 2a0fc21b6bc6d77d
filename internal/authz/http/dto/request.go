// Package dto defines request and response payloads for authorization endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	customValidation "github.com/allisson/credentials/internal/validation"
)

// IssueTokenRequest contains the parameters for exchanging a principal secret
// for a bearer token.
type IssueTokenRequest struct {
	PrincipalName string `json:"principal_name" binding:"required"`
	Secret        string `json:"secret"         binding:"required"`
}

// Validate checks if the issue token request is valid.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PrincipalName, validation.Required, customValidation.Identifier),
		validation.Field(&r.Secret, validation.Required),
	)
}

// ToInput converts the request to a domain input.
func (r *IssueTokenRequest) ToInput() *authzDomain.IssueTokenInput {
	return &authzDomain.IssueTokenInput{
		PrincipalName: r.PrincipalName,
		Secret:        r.Secret,
	}
}
