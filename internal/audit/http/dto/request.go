// Package dto defines request and response payloads for audit log endpoints.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/credentials/internal/validation"
)

// SystemRequestRequest records a free-form structured event in the audit log.
type SystemRequestRequest struct {
	SubjectID string         `json:"subject_id" binding:"required"`
	Detail    map[string]any `json:"detail"     binding:"required"`
}

// Validate checks if the system request is valid.
func (r *SystemRequestRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SubjectID, validation.Required, customValidation.UUID),
		validation.Field(&r.Detail, validation.Required),
	)
}

// SubjectUUID returns the parsed subject id. Call only after Validate.
func (r *SystemRequestRequest) SubjectUUID() uuid.UUID {
	id, _ := uuid.Parse(r.SubjectID)
	return id
}
