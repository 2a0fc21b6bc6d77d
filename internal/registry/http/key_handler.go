// Package http provides HTTP handlers for credential lifecycle operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/credentials/internal/httputil"
	registryDomain "github.com/allisson/credentials/internal/registry/domain"
	"github.com/allisson/credentials/internal/registry/http/dto"
	registryUseCase "github.com/allisson/credentials/internal/registry/usecase"
	customValidation "github.com/allisson/credentials/internal/validation"
)

// KeyHandler handles HTTP requests for credential lifecycle operations.
type KeyHandler struct {
	keyRegistryUseCase registryUseCase.KeyRegistryUseCase
	logger             *slog.Logger
}

// NewKeyHandler creates a new key handler with required dependencies.
func NewKeyHandler(
	keyRegistryUseCase registryUseCase.KeyRegistryUseCase,
	logger *slog.Logger,
) *KeyHandler {
	return &KeyHandler{
		keyRegistryUseCase: keyRegistryUseCase,
		logger:             logger,
	}
}

// CreateHandler registers a new credential.
// POST /v1/keys - Requires the key:create grant.
// Returns 201 Created with the credential.
func (h *KeyHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateKeyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	credential, err := h.keyRegistryUseCase.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapCredentialToResponse(credential))
}

// GetHandler retrieves a credential by its ID.
// GET /v1/keys/:id - Requires the key:get grant.
// Returns 200 OK with the credential.
func (h *KeyHandler) GetHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	credential, err := h.keyRegistryUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCredentialToResponse(credential))
}

// ListHandler retrieves credentials with optional filters and pagination.
// GET /v1/keys?status=active&environment=production&system_type=service&offset=0&limit=50
// Requires the key:list grant. Returns 200 OK with credentials in creation order.
func (h *KeyHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	filter := registryDomain.Filter{
		Status:      registryDomain.Status(c.Query("status")),
		Environment: c.Query("environment"),
		SystemType:  c.Query("system_type"),
	}

	credentials, err := h.keyRegistryUseCase.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCredentialsToListResponse(credentials))
}

// RevokeHandler performs an emergency revocation of a credential.
// DELETE /v1/keys/:id - Requires the key:revoke grant.
// Returns 204 No Content. Revocation is terminal.
func (h *KeyHandler) RevokeHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.keyRegistryUseCase.Revoke(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
