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
	"github.com/allisson/credentials/internal/registry/http/dto"
	"github.com/allisson/credentials/internal/registry/usecase/mocks"
)

// setupTestHandler creates a test handler with mocked dependencies.
func setupTestHandler(t *testing.T) (*KeyHandler, *mocks.MockKeyRegistryUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mocks.MockKeyRegistryUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewKeyHandler(mockUseCase, logger), mockUseCase
}

func testRouter(handler *KeyHandler) *gin.Engine {
	router := gin.New()
	router.POST("/v1/keys", handler.CreateHandler)
	router.GET("/v1/keys", handler.ListHandler)
	router.GET("/v1/keys/:id", handler.GetHandler)
	router.DELETE("/v1/keys/:id", handler.RevokeHandler)
	return router
}

func testCredential() *registryDomain.Credential {
	return &registryDomain.Credential{
		ID:             uuid.Must(uuid.NewV7()),
		Name:           "billing api key",
		SystemName:     "billing-api",
		SystemType:     "service",
		Environment:    "production",
		Status:         registryDomain.StatusActive,
		KeyRef:         "store/billing-api/prod",
		CurrentVersion: 1,
		CreatedAt:      time.Now().UTC(),
	}
}

func TestKeyHandler_CreateHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		credential := testCredential()

		mockUseCase.On("Create", mock.Anything, mock.AnythingOfType("domain.CreateKeyInput")).
			Return(credential, nil).Once()

		body, _ := json.Marshal(dto.CreateKeyRequest{
			Name:        credential.Name,
			SystemName:  credential.SystemName,
			SystemType:  credential.SystemType,
			Environment: credential.Environment,
			KeyRef:      credential.KeyRef,
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/keys", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.KeyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, credential.ID.String(), response.ID)
		assert.Equal(t, "active", response.Status)
		assert.Equal(t, uint(1), response.CurrentVersion)
	})

	t.Run("MissingRequiredField", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/keys",
			bytes.NewReader([]byte(`{"name":"x"}`)))
		req.Header.Set("Content-Type", "application/json")
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/keys", bytes.NewReader([]byte(`{`)))
		req.Header.Set("Content-Type", "application/json")
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestKeyHandler_GetHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		credential := testCredential()

		mockUseCase.On("Get", mock.Anything, credential.ID).Return(credential, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/keys/"+credential.ID.String(), nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		id := uuid.Must(uuid.NewV7())

		mockUseCase.On("Get", mock.Anything, id).
			Return(nil, registryDomain.ErrCredentialNotFound).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/keys/"+id.String(), nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("MalformedID", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/keys/not-a-uuid", nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestKeyHandler_ListHandler(t *testing.T) {
	t.Run("PassesFiltersThrough", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		expectedFilter := registryDomain.Filter{
			Status:      registryDomain.StatusActive,
			Environment: "production",
		}
		mockUseCase.On("List", mock.Anything, expectedFilter, 0, 50).
			Return([]*registryDomain.Credential{testCredential()}, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/keys?status=active&environment=production", nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListKeysResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Len(t, response.Data, 1)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("List", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperrors.ErrForbidden).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/keys", nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestKeyHandler_RevokeHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		id := uuid.Must(uuid.NewV7())

		mockUseCase.On("Revoke", mock.Anything, id).Return(nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/keys/"+id.String(), nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("AlreadyRevokedConflict", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		id := uuid.Must(uuid.NewV7())

		mockUseCase.On("Revoke", mock.Anything, id).
			Return(registryDomain.ErrCredentialRevoked).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/keys/"+id.String(), nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
