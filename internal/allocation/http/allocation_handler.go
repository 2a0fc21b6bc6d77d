// Package http provides HTTP handlers for allocation operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/credentials/internal/allocation/http/dto"
	allocationUseCase "github.com/allisson/credentials/internal/allocation/usecase"
	apperrors "github.com/allisson/credentials/internal/errors"
	"github.com/allisson/credentials/internal/httputil"
	customValidation "github.com/allisson/credentials/internal/validation"
)

// AllocationHandler handles HTTP requests for allocation operations.
type AllocationHandler struct {
	allocationManagerUseCase allocationUseCase.AllocationManagerUseCase
	logger                   *slog.Logger
}

// NewAllocationHandler creates a new allocation handler with required dependencies.
func NewAllocationHandler(
	allocationManagerUseCase allocationUseCase.AllocationManagerUseCase,
	logger *slog.Logger,
) *AllocationHandler {
	return &AllocationHandler{
		allocationManagerUseCase: allocationManagerUseCase,
		logger:                   logger,
	}
}

// AllocateHandler binds a credential to a consumer.
// POST /v1/allocations - Requires the allocation:create grant.
// Re-allocating an active (key, consumer) pair replaces its scope.
// Returns 201 Created with the allocation.
func (h *AllocationHandler) AllocateHandler(c *gin.Context) {
	var req dto.AllocateRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	allocation, err := h.allocationManagerUseCase.Allocate(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapAllocationToResponse(allocation))
}

// RevokeHandler deactivates an allocation.
// DELETE /v1/allocations/:id - Requires the allocation:revoke grant.
// Returns 204 No Content.
func (h *AllocationHandler) RevokeHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.allocationManagerUseCase.Revoke(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ListHandler retrieves allocations for a credential or a consumer.
// GET /v1/allocations?key_id=<uuid> or GET /v1/allocations?consumer_id=<id>
// Requires the allocation:list grant. Exactly one of the two filters is
// required. Returns 200 OK with allocations in creation order.
func (h *AllocationHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	keyIDParam := c.Query("key_id")
	consumerID := c.Query("consumer_id")

	switch {
	case keyIDParam != "" && consumerID != "":
		err := apperrors.Wrap(apperrors.ErrInvalidInput, "key_id and consumer_id are mutually exclusive")
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	case keyIDParam != "":
		keyID, err := uuid.Parse(keyIDParam)
		if err != nil {
			httputil.HandleBadRequestGin(c, err, h.logger)
			return
		}

		allocations, err := h.allocationManagerUseCase.ListForKey(c.Request.Context(), keyID, offset, limit)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}

		c.JSON(http.StatusOK, dto.MapAllocationsToListResponse(allocations))
	case consumerID != "":
		allocations, err := h.allocationManagerUseCase.ListForConsumer(c.Request.Context(), consumerID, offset, limit)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}

		c.JSON(http.StatusOK, dto.MapAllocationsToListResponse(allocations))
	default:
		err := apperrors.Wrap(apperrors.ErrInvalidInput, "key_id or consumer_id is required")
		httputil.HandleValidationErrorGin(c, err, h.logger)
	}
}
