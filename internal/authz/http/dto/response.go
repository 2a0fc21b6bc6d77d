package dto

import (
	"time"
)

// IssueTokenResponse contains the result of issuing a token.
// The token is only returned once and must be saved securely by the caller.
type IssueTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
