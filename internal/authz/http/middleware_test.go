package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	"github.com/allisson/credentials/internal/authz/service"
	"github.com/allisson/credentials/internal/authz/usecase/mocks"
)

func middlewareTestRouter(mockUseCase *mocks.MockTokenUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)

	tokenService := service.NewTokenService()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(AuthenticationMiddleware(mockUseCase, tokenService, logger))
	router.GET("/protected", func(c *gin.Context) {
		c.String(http.StatusOK, authzDomain.PrincipalName(c.Request.Context()))
	})
	return router
}

func TestAuthenticationMiddleware(t *testing.T) {
	t.Run("Success_StoresPrincipalInContext", func(t *testing.T) {
		mockUseCase := &mocks.MockTokenUseCase{}
		tokenService := service.NewTokenService()

		principal := &authzDomain.Principal{Name: "rotation-operator"}
		mockUseCase.On("Authenticate", mock.Anything, tokenService.HashToken("plain-token")).
			Return(principal, nil).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer plain-token")
		middlewareTestRouter(mockUseCase).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "rotation-operator", w.Body.String())
	})

	t.Run("Success_BearerSchemeIsCaseInsensitive", func(t *testing.T) {
		mockUseCase := &mocks.MockTokenUseCase{}

		principal := &authzDomain.Principal{Name: "rotation-operator"}
		mockUseCase.On("Authenticate", mock.Anything, mock.Anything).Return(principal, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "bEaReR plain-token")
		middlewareTestRouter(mockUseCase).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_MissingAuthorizationHeader", func(t *testing.T) {
		mockUseCase := &mocks.MockTokenUseCase{}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		middlewareTestRouter(mockUseCase).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockUseCase.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("Error_MalformedAuthorizationHeader", func(t *testing.T) {
		mockUseCase := &mocks.MockTokenUseCase{}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		middlewareTestRouter(mockUseCase).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockUseCase.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("Error_EmptyBearerToken", func(t *testing.T) {
		mockUseCase := &mocks.MockTokenUseCase{}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer ")
		middlewareTestRouter(mockUseCase).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockUseCase.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("Error_ExpiredToken", func(t *testing.T) {
		mockUseCase := &mocks.MockTokenUseCase{}

		mockUseCase.On("Authenticate", mock.Anything, mock.Anything).
			Return(nil, authzDomain.ErrTokenExpired).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer stale-token")
		middlewareTestRouter(mockUseCase).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
