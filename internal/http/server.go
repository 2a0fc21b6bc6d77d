package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	allocationHTTP "github.com/allisson/credentials/internal/allocation/http"
	auditHTTP "github.com/allisson/credentials/internal/audit/http"
	authzHTTP "github.com/allisson/credentials/internal/authz/http"
	"github.com/allisson/credentials/internal/config"
	registryHTTP "github.com/allisson/credentials/internal/registry/http"
	rotationHTTP "github.com/allisson/credentials/internal/rotation/http"
)

// RouterDeps bundles the handlers and middleware the router mounts.
type RouterDeps struct {
	KeyHandler        *registryHTTP.KeyHandler
	AllocationHandler *allocationHTTP.AllocationHandler
	RotationHandler   *rotationHTTP.RotationHandler
	AuditHandler      *auditHTTP.AuditHandler
	TokenHandler      *authzHTTP.TokenHandler

	// AuthMiddleware resolves bearer tokens to principals. Mounted on every
	// route except health, readiness, and token issuance.
	AuthMiddleware gin.HandlerFunc

	// MetricsMiddleware records per-route HTTP metrics. Optional.
	MetricsMiddleware gin.HandlerFunc
}

// SetupRouter builds the gin engine with all routes and middleware.
//
// Health and readiness are unauthenticated. Token issuance is unauthenticated
// but rate limited per IP. Everything else requires a bearer token and is
// rate limited per principal.
func SetupRouter(cfg *config.Config, logger *slog.Logger, deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if deps.MetricsMiddleware != nil {
		router.Use(deps.MetricsMiddleware)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	auth := router.Group("/v1/auth")
	if cfg.RateLimitEnabled {
		auth.Use(TokenRateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, logger))
	}
	auth.POST("/token", deps.TokenHandler.IssueTokenHandler)

	v1 := router.Group("/v1")
	v1.Use(deps.AuthMiddleware)
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, logger))
	}

	v1.POST("/keys", deps.KeyHandler.CreateHandler)
	v1.GET("/keys", deps.KeyHandler.ListHandler)
	v1.GET("/keys/:id", deps.KeyHandler.GetHandler)
	v1.DELETE("/keys/:id", deps.KeyHandler.RevokeHandler)

	v1.POST("/keys/:id/rotate", deps.RotationHandler.RotateHandler)
	v1.GET("/keys/:id/rotations", deps.RotationHandler.ListHandler)

	v1.POST("/allocations", deps.AllocationHandler.AllocateHandler)
	v1.GET("/allocations", deps.AllocationHandler.ListHandler)
	v1.DELETE("/allocations/:id", deps.AllocationHandler.RevokeHandler)

	v1.GET("/audit-log", deps.AuditHandler.ListHandler)
	v1.GET("/audit-log/verify", deps.AuditHandler.VerifyHandler)
	v1.POST("/system-requests", deps.AuditHandler.SystemRequestHandler)

	return router
}

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a new API server listening on host:port with the given router.
func NewServer(host string, port int, router *gin.Engine, logger *slog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
