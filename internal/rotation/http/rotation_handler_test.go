package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/credentials/internal/errors"
	registryDomain "github.com/allisson/credentials/internal/registry/domain"
	rotationDomain "github.com/allisson/credentials/internal/rotation/domain"
	"github.com/allisson/credentials/internal/rotation/http/dto"
	"github.com/allisson/credentials/internal/rotation/usecase/mocks"
)

// setupTestHandler creates a test handler with mocked dependencies.
func setupTestHandler(t *testing.T) (*RotationHandler, *mocks.MockRotationSchedulerUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mocks.MockRotationSchedulerUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewRotationHandler(mockUseCase, logger), mockUseCase
}

func testRouter(handler *RotationHandler) *gin.Engine {
	router := gin.New()
	router.POST("/v1/keys/:id/rotate", handler.RotateHandler)
	router.GET("/v1/keys/:id/rotations", handler.ListHandler)
	return router
}

func testRotationRecord(keyID uuid.UUID) *rotationDomain.RotationRecord {
	now := time.Now().UTC()
	return &rotationDomain.RotationRecord{
		ID:             uuid.Must(uuid.NewV7()),
		KeyID:          keyID,
		OldVersion:     1,
		NewVersion:     2,
		InitiatedAt:    now,
		GraceExpiresAt: now.Add(time.Hour),
	}
}

func TestRotationHandler_RotateHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		keyID := uuid.Must(uuid.NewV7())
		record := testRotationRecord(keyID)

		expectedInput := rotationDomain.RotateInput{KeyID: keyID, GracePeriod: 30 * time.Minute}
		mockUseCase.On("Rotate", mock.Anything, expectedInput).Return(record, nil).Once()

		body, _ := json.Marshal(dto.RotateRequest{GracePeriodSeconds: 1800})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/keys/"+keyID.String()+"/rotate",
			bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.RotationRecordResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, record.ID.String(), response.ID)
		assert.Equal(t, uint(2), response.NewVersion)
		assert.Nil(t, response.CompletedAt)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("EmptyBodySelectsDefaultGrace", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		keyID := uuid.Must(uuid.NewV7())

		expectedInput := rotationDomain.RotateInput{KeyID: keyID}
		mockUseCase.On("Rotate", mock.Anything, expectedInput).
			Return(testRotationRecord(keyID), nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/keys/"+keyID.String()+"/rotate", nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("NegativeGracePeriod", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		keyID := uuid.Must(uuid.NewV7())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/keys/"+keyID.String()+"/rotate",
			bytes.NewReader([]byte(`{"grace_period_seconds":-1}`)))
		req.Header.Set("Content-Type", "application/json")
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Rotate", mock.Anything, mock.Anything)
	})

	t.Run("RotationInProgressConflict", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		keyID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Rotate", mock.Anything, mock.Anything).
			Return(nil, apperrors.ErrRotationInProgress).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/keys/"+keyID.String()+"/rotate", nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("RevokedCredentialConflict", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		keyID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Rotate", mock.Anything, mock.Anything).
			Return(nil, registryDomain.ErrCredentialRevoked).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/keys/"+keyID.String()+"/rotate", nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("SecretStoreUnavailable", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		keyID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Rotate", mock.Anything, mock.Anything).
			Return(nil, rotationDomain.ErrSecretStoreUnavailable).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/keys/"+keyID.String()+"/rotate", nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("MalformedID", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/keys/not-a-uuid/rotate", nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRotationHandler_ListHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		keyID := uuid.Must(uuid.NewV7())

		mockUseCase.On("ListForKey", mock.Anything, keyID, 0, 50).
			Return([]*rotationDomain.RotationRecord{testRotationRecord(keyID)}, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/keys/"+keyID.String()+"/rotations", nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListRotationRecordsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Len(t, response.Data, 1)
	})

	t.Run("Forbidden", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		keyID := uuid.Must(uuid.NewV7())

		mockUseCase.On("ListForKey", mock.Anything, keyID, 0, 50).
			Return(nil, apperrors.ErrForbidden).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/keys/"+keyID.String()+"/rotations", nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
