package dto

import (
	"time"

	rotationDomain "github.com/allisson/credentials/internal/rotation/domain"
)

// RotationRecordResponse represents a rotation record in API responses.
type RotationRecordResponse struct {
	ID             string     `json:"id"`
	KeyID          string     `json:"key_id"`
	OldVersion     uint       `json:"old_version"`
	NewVersion     uint       `json:"new_version"`
	InitiatedAt    time.Time  `json:"initiated_at"`
	GraceExpiresAt time.Time  `json:"grace_expires_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// MapRotationRecordToResponse converts a domain rotation record to an API response.
func MapRotationRecordToResponse(record *rotationDomain.RotationRecord) RotationRecordResponse {
	return RotationRecordResponse{
		ID:             record.ID.String(),
		KeyID:          record.KeyID.String(),
		OldVersion:     record.OldVersion,
		NewVersion:     record.NewVersion,
		InitiatedAt:    record.InitiatedAt,
		GraceExpiresAt: record.GraceExpiresAt,
		CompletedAt:    record.CompletedAt,
	}
}

// ListRotationRecordsResponse represents a paginated rotation history in API responses.
type ListRotationRecordsResponse struct {
	Data []RotationRecordResponse `json:"data"`
}

// MapRotationRecordsToListResponse converts a slice of domain rotation records to a list response.
func MapRotationRecordsToListResponse(records []*rotationDomain.RotationRecord) ListRotationRecordsResponse {
	data := make([]RotationRecordResponse, 0, len(records))
	for _, record := range records {
		data = append(data, MapRotationRecordToResponse(record))
	}

	return ListRotationRecordsResponse{
		Data: data,
	}
}
