// Package http provides HTTP handlers for rotation operations.
package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/credentials/internal/httputil"
	"github.com/allisson/credentials/internal/rotation/http/dto"
	rotationUseCase "github.com/allisson/credentials/internal/rotation/usecase"
	customValidation "github.com/allisson/credentials/internal/validation"
)

// RotationHandler handles HTTP requests for rotation operations.
type RotationHandler struct {
	rotationSchedulerUseCase rotationUseCase.RotationSchedulerUseCase
	logger                   *slog.Logger
}

// NewRotationHandler creates a new rotation handler with required dependencies.
func NewRotationHandler(
	rotationSchedulerUseCase rotationUseCase.RotationSchedulerUseCase,
	logger *slog.Logger,
) *RotationHandler {
	return &RotationHandler{
		rotationSchedulerUseCase: rotationSchedulerUseCase,
		logger:                   logger,
	}
}

// RotateHandler initiates a rotation for a credential.
// POST /v1/keys/:id/rotate - Requires the key:rotate grant.
// The body is optional; an empty or absent grace period selects the default.
// Returns 200 OK with the rotation record.
func (h *RotationHandler) RotateHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.RotateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	record, err := h.rotationSchedulerUseCase.Rotate(c.Request.Context(), req.ToInput(id))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRotationRecordToResponse(record))
}

// ListHandler retrieves the rotation history of a credential.
// GET /v1/keys/:id/rotations - Requires the key:list grant.
// Returns 200 OK with rotation records in creation order.
func (h *RotationHandler) ListHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	records, err := h.rotationSchedulerUseCase.ListForKey(c.Request.Context(), id, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRotationRecordsToListResponse(records))
}
