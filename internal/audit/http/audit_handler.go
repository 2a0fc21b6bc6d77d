// Package http provides HTTP handlers for querying and verifying the audit log.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditDomain "github.com/allisson/credentials/internal/audit/domain"
	"github.com/allisson/credentials/internal/audit/http/dto"
	auditUseCase "github.com/allisson/credentials/internal/audit/usecase"
	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	"github.com/allisson/credentials/internal/httputil"
	customValidation "github.com/allisson/credentials/internal/validation"
)

// AuthorizationGate decides whether the caller may query the audit log.
type AuthorizationGate interface {
	Authorize(ctx context.Context, operation authzDomain.Operation) error
}

// AuditHandler handles HTTP requests for audit log operations.
type AuditHandler struct {
	auditLogUseCase auditUseCase.AuditLogUseCase
	gate            AuthorizationGate
	logger          *slog.Logger
}

// NewAuditHandler creates a new audit handler with required dependencies.
func NewAuditHandler(
	auditLogUseCase auditUseCase.AuditLogUseCase,
	gate AuthorizationGate,
	logger *slog.Logger,
) *AuditHandler {
	return &AuditHandler{
		auditLogUseCase: auditLogUseCase,
		gate:            gate,
		logger:          logger,
	}
}

// ListHandler returns audit entries in sequence order.
// GET /v1/audit-log - Requires the audit:query grant.
// Supports after_sequence cursor pagination plus action, subject_id, and
// created_at_from/created_at_to (RFC3339) filters.
func (h *AuditHandler) ListHandler(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.gate.Authorize(ctx, authzDomain.AuditQueryOperation); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	afterSequence, err := httputil.ParseSequenceCursor(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	_, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	filter := auditDomain.Filter{
		AfterSequence: afterSequence,
		Limit:         limit,
	}

	if action := c.Query("action"); action != "" {
		if !auditDomain.Action(action).IsValid() {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid action parameter: unknown action %q", action),
				h.logger)
			return
		}
		filter.Action = auditDomain.Action(action)
	}

	if subjectIDStr := c.Query("subject_id"); subjectIDStr != "" {
		subjectID, err := uuid.Parse(subjectIDStr)
		if err != nil {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid subject_id parameter: must be a valid UUID"),
				h.logger)
			return
		}
		filter.SubjectID = &subjectID
	}

	filter.CreatedAtFrom, err = parseTimeQuery(c, "created_at_from")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	filter.CreatedAtTo, err = parseTimeQuery(c, "created_at_to")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	entries, err := h.auditLogUseCase.List(ctx, filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditEntriesToListResponse(entries))
}

// VerifyHandler walks the audit hash chain and reports its integrity.
// GET /v1/audit-log/verify - Requires the audit:query grant.
// Optional created_at_from/created_at_to (RFC3339) bound the walk.
func (h *AuditHandler) VerifyHandler(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.gate.Authorize(ctx, authzDomain.AuditQueryOperation); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	createdAtFrom, err := parseTimeQuery(c, "created_at_from")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	createdAtTo, err := parseTimeQuery(c, "created_at_to")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	report, err := h.auditLogUseCase.Verify(ctx, createdAtFrom, createdAtTo)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, report)
}

// SystemRequestHandler records a free-form structured event in the audit log.
// POST /v1/system-requests - Requires the audit:query grant.
// Returns 201 Created with no body.
func (h *AuditHandler) SystemRequestHandler(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.gate.Authorize(ctx, authzDomain.AuditQueryOperation); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var req dto.SystemRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err := h.auditLogUseCase.Append(
		ctx,
		auditDomain.SystemRequestAction,
		req.SubjectUUID(),
		authzDomain.PrincipalName(ctx),
		req.Detail,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusCreated, "application/json", nil)
}

func parseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	value := c.Query(name)
	if value == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter: must be an RFC3339 timestamp", name)
	}
	return &parsed, nil
}
