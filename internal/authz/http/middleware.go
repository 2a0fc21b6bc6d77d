package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	authzService "github.com/allisson/credentials/internal/authz/service"
	authzUseCase "github.com/allisson/credentials/internal/authz/usecase"
	apperrors "github.com/allisson/credentials/internal/errors"
	"github.com/allisson/credentials/internal/httputil"
)

// AuthenticationMiddleware authenticates requests via a Bearer token in the
// Authorization header.
//
// The middleware hashes the presented token, resolves it to a principal via
// TokenUseCase.Authenticate, and stores the principal in the request context
// for the authorization gate and audit attribution. Missing or malformed
// headers are rejected with 401 before any database lookup.
func AuthenticationMiddleware(
	tokenUseCase authzUseCase.TokenUseCase,
	tokenService authzService.TokenService,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Bearer scheme, case-insensitive
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		plainToken := authHeader[len(bearerPrefix):]
		if plainToken == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		tokenHash := tokenService.HashToken(plainToken)

		principal, err := tokenUseCase.Authenticate(c.Request.Context(), tokenHash)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := authzDomain.WithPrincipal(c.Request.Context(), principal)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("principal_id", principal.ID.String()),
			slog.String("principal_name", principal.Name))

		c.Next()
	}
}
