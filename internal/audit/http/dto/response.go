package dto

import (
	"encoding/hex"
	"time"

	auditDomain "github.com/allisson/credentials/internal/audit/domain"
)

// AuditEntryResponse represents an audit log entry in API responses.
// Hashes are hex-encoded for transport.
type AuditEntryResponse struct {
	Sequence  uint64         `json:"sequence"`
	Action    string         `json:"action"`
	SubjectID string         `json:"subject_id"`
	Principal string         `json:"principal"`
	Detail    map[string]any `json:"detail,omitempty"`
	PrevHash  string         `json:"prev_hash,omitempty"`
	EntryHash string         `json:"entry_hash"`
	CreatedAt time.Time      `json:"created_at"`
}

// MapAuditEntryToResponse converts a domain audit entry to an API response.
func MapAuditEntryToResponse(entry *auditDomain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		Sequence:  entry.Sequence,
		Action:    string(entry.Action),
		SubjectID: entry.SubjectID.String(),
		Principal: entry.Principal,
		Detail:    entry.Detail,
		PrevHash:  hex.EncodeToString(entry.PrevHash),
		EntryHash: hex.EncodeToString(entry.EntryHash),
		CreatedAt: entry.CreatedAt,
	}
}

// ListAuditEntriesResponse is the payload for audit log listings.
type ListAuditEntriesResponse struct {
	Data []AuditEntryResponse `json:"data"`
}

// MapAuditEntriesToListResponse converts domain audit entries to a list response.
func MapAuditEntriesToListResponse(entries []*auditDomain.AuditEntry) ListAuditEntriesResponse {
	data := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, MapAuditEntryToResponse(entry))
	}
	return ListAuditEntriesResponse{Data: data}
}
