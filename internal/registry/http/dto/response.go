package dto

import (
	"time"

	registryDomain "github.com/allisson/credentials/internal/registry/domain"
)

// KeyResponse represents a credential in API responses. The key_ref points
// into the external secret store; the raw material never appears here.
type KeyResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	SystemName     string     `json:"system_name"`
	SystemType     string     `json:"system_type"`
	Environment    string     `json:"environment"`
	Status         string     `json:"status"`
	KeyRef         string     `json:"key_ref"`
	CurrentVersion uint       `json:"current_version"`
	CreatedAt      time.Time  `json:"created_at"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty"`
	LastRotatedAt  *time.Time `json:"last_rotated_at,omitempty"`
}

// MapCredentialToResponse converts a domain credential to an API response.
func MapCredentialToResponse(credential *registryDomain.Credential) KeyResponse {
	return KeyResponse{
		ID:             credential.ID.String(),
		Name:           credential.Name,
		SystemName:     credential.SystemName,
		SystemType:     credential.SystemType,
		Environment:    credential.Environment,
		Status:         string(credential.Status),
		KeyRef:         credential.KeyRef,
		CurrentVersion: credential.CurrentVersion,
		CreatedAt:      credential.CreatedAt,
		LastUsedAt:     credential.LastUsedAt,
		LastRotatedAt:  credential.LastRotatedAt,
	}
}

// ListKeysResponse represents a paginated list of credentials in API responses.
type ListKeysResponse struct {
	Data []KeyResponse `json:"data"`
}

// MapCredentialsToListResponse converts a slice of domain credentials to a list response.
func MapCredentialsToListResponse(credentials []*registryDomain.Credential) ListKeysResponse {
	data := make([]KeyResponse, 0, len(credentials))
	for _, credential := range credentials {
		data = append(data, MapCredentialToResponse(credential))
	}

	return ListKeysResponse{
		Data: data,
	}
}
