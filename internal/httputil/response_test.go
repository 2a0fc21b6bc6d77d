package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/credentials/internal/errors"
)

func performWithError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("GET", "/", nil)
	HandleErrorGin(c, err, nil)
	return rec
}

func TestHandleErrorGin(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"NotFound", apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{"Conflict", apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{"RotationInProgress", apperrors.ErrRotationInProgress, http.StatusConflict, "rotation_in_progress"},
		{"InvalidState", apperrors.ErrInvalidState, http.StatusConflict, "invalid_state"},
		{"InvalidInput", apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input"},
		{"Unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"Forbidden", apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"Unknown", assert.AnError, http.StatusServiceUnavailable, "storage_failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := performWithError(tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}

	t.Run("WrappedErrorsMapTheSame", func(t *testing.T) {
		rec := performWithError(apperrors.Wrap(apperrors.ErrNotFound, "credential lookup"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("NilErrorWritesNothing", func(t *testing.T) {
		rec := performWithError(nil)
		assert.Empty(t, rec.Body.String())
	})
}

func TestHandleValidationErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("POST", "/", nil)

	HandleValidationErrorGin(c, assert.AnError, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestHandleBadRequestGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("POST", "/", nil)

	HandleBadRequestGin(c, assert.AnError, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad_request")
}
