// Package http provides the token issuance endpoint and the authentication
// middleware that resolves bearer tokens to principals.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/credentials/internal/authz/http/dto"
	authzUseCase "github.com/allisson/credentials/internal/authz/usecase"
	"github.com/allisson/credentials/internal/httputil"
	customValidation "github.com/allisson/credentials/internal/validation"
)

// TokenHandler handles HTTP requests for token issuance.
type TokenHandler struct {
	tokenUseCase authzUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(
	tokenUseCase authzUseCase.TokenUseCase,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// IssueTokenHandler exchanges a principal name and secret for a bearer token.
// POST /v1/auth/token - No authentication required (this is the authentication endpoint).
// Returns 201 Created with the token and its expiration time.
func (h *TokenHandler) IssueTokenHandler(c *gin.Context) {
	var req dto.IssueTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.tokenUseCase.Issue(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.IssueTokenResponse{
		Token:     output.PlainToken,
		ExpiresAt: output.ExpiresAt,
	})
}
