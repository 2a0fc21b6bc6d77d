package dto

import (
	"time"

	allocationDomain "github.com/allisson/credentials/internal/allocation/domain"
)

// AllocationResponse represents an allocation in API responses.
type AllocationResponse struct {
	ID           string         `json:"id"`
	KeyID        string         `json:"key_id"`
	ConsumerType string         `json:"consumer_type"`
	ConsumerID   string         `json:"consumer_id"`
	Scope        map[string]any `json:"scope"`
	CreatedAt    time.Time      `json:"created_at"`
	RevokedAt    *time.Time     `json:"revoked_at,omitempty"`
}

// MapAllocationToResponse converts a domain allocation to an API response.
func MapAllocationToResponse(allocation *allocationDomain.Allocation) AllocationResponse {
	return AllocationResponse{
		ID:           allocation.ID.String(),
		KeyID:        allocation.KeyID.String(),
		ConsumerType: allocation.ConsumerType,
		ConsumerID:   allocation.ConsumerID,
		Scope:        map[string]any(allocation.Scope),
		CreatedAt:    allocation.CreatedAt,
		RevokedAt:    allocation.RevokedAt,
	}
}

// ListAllocationsResponse represents a paginated list of allocations in API responses.
type ListAllocationsResponse struct {
	Data []AllocationResponse `json:"data"`
}

// MapAllocationsToListResponse converts a slice of domain allocations to a list response.
func MapAllocationsToListResponse(allocations []*allocationDomain.Allocation) ListAllocationsResponse {
	data := make([]AllocationResponse, 0, len(allocations))
	for _, allocation := range allocations {
		data = append(data, MapAllocationToResponse(allocation))
	}

	return ListAllocationsResponse{
		Data: data,
	}
}
