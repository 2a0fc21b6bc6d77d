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

	allocationDomain "github.com/allisson/credentials/internal/allocation/domain"
	"github.com/allisson/credentials/internal/allocation/http/dto"
	"github.com/allisson/credentials/internal/allocation/usecase/mocks"
	apperrors "github.com/allisson/credentials/internal/errors"
	registryDomain "github.com/allisson/credentials/internal/registry/domain"
)

// setupTestHandler creates a test handler with mocked dependencies.
func setupTestHandler(t *testing.T) (*AllocationHandler, *mocks.MockAllocationManagerUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mocks.MockAllocationManagerUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewAllocationHandler(mockUseCase, logger), mockUseCase
}

func testRouter(handler *AllocationHandler) *gin.Engine {
	router := gin.New()
	router.POST("/v1/allocations", handler.AllocateHandler)
	router.GET("/v1/allocations", handler.ListHandler)
	router.DELETE("/v1/allocations/:id", handler.RevokeHandler)
	return router
}

func testAllocation() *allocationDomain.Allocation {
	return &allocationDomain.Allocation{
		ID:           uuid.Must(uuid.NewV7()),
		KeyID:        uuid.Must(uuid.NewV7()),
		ConsumerType: "service",
		ConsumerID:   "billing-api",
		Scope:        allocationDomain.Scope{"read": true},
		CreatedAt:    time.Now().UTC(),
	}
}

func TestAllocationHandler_AllocateHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		allocation := testAllocation()

		mockUseCase.On("Allocate", mock.Anything, mock.AnythingOfType("domain.AllocateInput")).
			Return(allocation, nil).Once()

		body, _ := json.Marshal(dto.AllocateRequest{
			KeyID:        allocation.KeyID.String(),
			ConsumerType: allocation.ConsumerType,
			ConsumerID:   allocation.ConsumerID,
			Scope:        map[string]any{"read": true},
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/allocations", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.AllocationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, allocation.ID.String(), response.ID)
		assert.Equal(t, allocation.KeyID.String(), response.KeyID)
		assert.Nil(t, response.RevokedAt)
	})

	t.Run("MalformedKeyID", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		body := []byte(`{"key_id":"not-a-uuid","consumer_type":"service","consumer_id":"billing-api","scope":{"read":true}}`)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/allocations", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Allocate", mock.Anything, mock.Anything)
	})

	t.Run("MissingScope", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		body := []byte(`{"key_id":"` + uuid.Must(uuid.NewV7()).String() +
			`","consumer_type":"service","consumer_id":"billing-api"}`)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/allocations", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Allocate", mock.Anything, mock.Anything)
	})

	t.Run("RevokedCredentialConflict", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Allocate", mock.Anything, mock.Anything).
			Return(nil, registryDomain.ErrCredentialRevoked).Once()

		body, _ := json.Marshal(dto.AllocateRequest{
			KeyID:        uuid.Must(uuid.NewV7()).String(),
			ConsumerType: "service",
			ConsumerID:   "billing-api",
			Scope:        map[string]any{"read": true},
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/allocations", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAllocationHandler_RevokeHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		id := uuid.Must(uuid.NewV7())

		mockUseCase.On("Revoke", mock.Anything, id).Return(nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/allocations/"+id.String(), nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		id := uuid.Must(uuid.NewV7())

		mockUseCase.On("Revoke", mock.Anything, id).
			Return(allocationDomain.ErrAllocationNotFound).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/allocations/"+id.String(), nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("MalformedID", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/allocations/not-a-uuid", nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAllocationHandler_ListHandler(t *testing.T) {
	t.Run("ForKey", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		allocation := testAllocation()

		mockUseCase.On("ListForKey", mock.Anything, allocation.KeyID, 0, 50).
			Return([]*allocationDomain.Allocation{allocation}, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/allocations?key_id="+allocation.KeyID.String(), nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListAllocationsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Len(t, response.Data, 1)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("ForConsumer", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("ListForConsumer", mock.Anything, "billing-api", 0, 50).
			Return([]*allocationDomain.Allocation{testAllocation()}, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/allocations?consumer_id=billing-api", nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("MissingFilter", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/allocations", nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "ListForKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockUseCase.AssertNotCalled(t, "ListForConsumer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BothFilters", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/v1/allocations?key_id="+uuid.Must(uuid.NewV7()).String()+"&consumer_id=billing-api", nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("ListForConsumer", mock.Anything, "billing-api", 0, 50).
			Return(nil, apperrors.ErrForbidden).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/allocations?consumer_id=billing-api", nil)
		testRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
