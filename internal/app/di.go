// Package app provides the dependency injection container assembling
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	allocationUseCase "github.com/allisson/credentials/internal/allocation/usecase"
	auditHTTP "github.com/allisson/credentials/internal/audit/http"
	auditService "github.com/allisson/credentials/internal/audit/service"
	auditUseCase "github.com/allisson/credentials/internal/audit/usecase"
	authzService "github.com/allisson/credentials/internal/authz/service"
	authzUseCase "github.com/allisson/credentials/internal/authz/usecase"
	"github.com/allisson/credentials/internal/config"
	"github.com/allisson/credentials/internal/database"
	"github.com/allisson/credentials/internal/http"
	"github.com/allisson/credentials/internal/keylock"
	"github.com/allisson/credentials/internal/metrics"
	registryUseCase "github.com/allisson/credentials/internal/registry/usecase"
	rotationService "github.com/allisson/credentials/internal/rotation/service"
	rotationUseCase "github.com/allisson/credentials/internal/rotation/usecase"
	rotationWorker "github.com/allisson/credentials/internal/rotation/worker"
)

// Container holds all application dependencies and provides methods to access
// them. Components are created lazily on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	keyLocks        *keylock.KeyLock
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Services
	chainHasher   auditService.ChainHasher
	secretStore   rotationService.SecretStoreConfirmer
	secretService authzService.SecretService
	tokenService  authzService.TokenService

	// Repositories
	auditRepo      auditUseCase.AuditEntryRepository
	credentialRepo registryUseCase.CredentialRepository
	allocationRepo allocationUseCase.AllocationRepository
	rotationRepo   rotationUseCase.RotationRecordRepository
	principalRepo  authzUseCase.PrincipalRepository
	tokenRepo      authzUseCase.TokenRepository

	// Use cases
	auditLogUseCase          auditUseCase.AuditLogUseCase
	keyRegistryUseCase       registryUseCase.KeyRegistryUseCase
	allocationManagerUseCase allocationUseCase.AllocationManagerUseCase
	rotationSchedulerUseCase rotationUseCase.RotationSchedulerUseCase
	principalUseCase         authzUseCase.PrincipalUseCase
	tokenUseCase             authzUseCase.TokenUseCase
	gate                     authzUseCase.AuthorizationGate

	// Servers and workers
	httpServer    *http.Server
	metricsServer *http.MetricsServer
	sweeper       *rotationWorker.Sweeper

	// Initialization flags and mutex for thread-safety
	mu                           sync.Mutex
	loggerInit                   sync.Once
	dbInit                       sync.Once
	txManagerInit                sync.Once
	keyLocksInit                 sync.Once
	metricsProviderInit          sync.Once
	businessMetricsInit          sync.Once
	chainHasherInit              sync.Once
	secretStoreInit              sync.Once
	secretServiceInit            sync.Once
	tokenServiceInit             sync.Once
	auditRepoInit                sync.Once
	credentialRepoInit           sync.Once
	allocationRepoInit           sync.Once
	rotationRepoInit             sync.Once
	principalRepoInit            sync.Once
	tokenRepoInit                sync.Once
	auditLogUseCaseInit          sync.Once
	keyRegistryUseCaseInit       sync.Once
	allocationManagerUseCaseInit sync.Once
	rotationSchedulerUseCaseInit sync.Once
	principalUseCaseInit         sync.Once
	tokenUseCaseInit             sync.Once
	gateInit                     sync.Once
	httpServerInit               sync.Once
	metricsServerInit            sync.Once
	sweeperInit                  sync.Once
	initErrors                   map[string]error
}

// NewContainer creates a new dependency injection container with the provided
// configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the structured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection instance.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager instance.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// KeyLocks returns the per-key lock registry shared by the use cases.
func (c *Container) KeyLocks() *keylock.KeyLock {
	c.keyLocksInit.Do(func() {
		c.keyLocks = keylock.New()
	})
	return c.keyLocks
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. When metrics are
// disabled a no-op recorder is returned.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the API server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance, or nil when metrics are
// disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		provider, providerErr := c.MetricsProvider()
		if providerErr != nil {
			c.initErrors["metricsServer"] = providerErr
			err = providerErr
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Sweeper returns the grace-expiry sweep worker.
func (c *Container) Sweeper() (*rotationWorker.Sweeper, error) {
	var err error
	c.sweeperInit.Do(func() {
		scheduler, schedulerErr := c.RotationSchedulerUseCase()
		if schedulerErr != nil {
			c.initErrors["sweeper"] = schedulerErr
			err = schedulerErr
			return
		}
		c.sweeper = rotationWorker.NewSweeper(scheduler, c.config.SweepInterval, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sweeper"]; exists {
		return nil, storedErr
	}
	return c.sweeper, nil
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates a structured JSON logger based on the configured log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initHTTPServer creates the API server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	keyHandler, err := c.KeyHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get key handler for http server: %w", err)
	}

	allocationHandler, err := c.AllocationHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get allocation handler for http server: %w", err)
	}

	rotationHandler, err := c.RotationHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get rotation handler for http server: %w", err)
	}

	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for http server: %w", err)
	}

	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for http server: %w", err)
	}

	deps := http.RouterDeps{
		KeyHandler:        keyHandler,
		AllocationHandler: allocationHandler,
		RotationHandler:   rotationHandler,
		AuditHandler:      auditHTTP.NewAuditHandler(auditLogUseCase, c.Gate(), logger),
		TokenHandler:      c.tokenHandler(tokenUseCase),
		AuthMiddleware:    c.authMiddleware(tokenUseCase),
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}
	if provider != nil {
		deps.MetricsMiddleware = metrics.HTTPMetricsMiddleware(
			provider.MeterProvider(),
			c.config.MetricsNamespace,
		)
	}

	router := http.SetupRouter(c.config, logger, deps)

	return http.NewServer(c.config.ServerHost, c.config.ServerPort, router, logger), nil
}
