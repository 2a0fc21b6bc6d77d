package app

import (
	"context"
	"fmt"

	rotationHTTP "github.com/allisson/credentials/internal/rotation/http"
	rotationRepository "github.com/allisson/credentials/internal/rotation/repository"
	rotationService "github.com/allisson/credentials/internal/rotation/service"
	rotationUseCase "github.com/allisson/credentials/internal/rotation/usecase"
)

// RotationRecordRepository returns the rotation record repository instance.
func (c *Container) RotationRecordRepository() (rotationUseCase.RotationRecordRepository, error) {
	var err error
	c.rotationRepoInit.Do(func() {
		c.rotationRepo, err = c.initRotationRecordRepository()
		if err != nil {
			c.initErrors["rotationRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rotationRepo"]; exists {
		return nil, storedErr
	}
	return c.rotationRepo, nil
}

// SecretStoreConfirmer returns the secret store confirmer. A no-op confirmer
// is used when no keeper URI is configured.
func (c *Container) SecretStoreConfirmer() (rotationService.SecretStoreConfirmer, error) {
	var err error
	c.secretStoreInit.Do(func() {
		c.secretStore, err = c.initSecretStoreConfirmer()
		if err != nil {
			c.initErrors["secretStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretStore"]; exists {
		return nil, storedErr
	}
	return c.secretStore, nil
}

// RotationSchedulerUseCase returns the rotation scheduler use case instance.
func (c *Container) RotationSchedulerUseCase() (rotationUseCase.RotationSchedulerUseCase, error) {
	var err error
	c.rotationSchedulerUseCaseInit.Do(func() {
		c.rotationSchedulerUseCase, err = c.initRotationSchedulerUseCase()
		if err != nil {
			c.initErrors["rotationSchedulerUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rotationSchedulerUseCase"]; exists {
		return nil, storedErr
	}
	return c.rotationSchedulerUseCase, nil
}

// RotationHandler returns the rotation HTTP handler.
func (c *Container) RotationHandler() (*rotationHTTP.RotationHandler, error) {
	useCase, err := c.RotationSchedulerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get rotation scheduler use case for rotation handler: %w", err)
	}
	return rotationHTTP.NewRotationHandler(useCase, c.Logger()), nil
}

// initRotationRecordRepository creates the rotation record repository based on
// the configured database driver.
func (c *Container) initRotationRecordRepository() (rotationUseCase.RotationRecordRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for rotation record repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return rotationRepository.NewMySQLRotationRecordRepository(db), nil
	case "postgres":
		return rotationRepository.NewPostgreSQLRotationRecordRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSecretStoreConfirmer creates the secret store confirmer from the
// configured keeper URI.
func (c *Container) initSecretStoreConfirmer() (rotationService.SecretStoreConfirmer, error) {
	if c.config.SecretStoreKeyURI == "" {
		return rotationService.NewNoOpConfirmer(), nil
	}
	return rotationService.NewKeeperConfirmer(
		context.Background(),
		c.config.SecretStoreKeyURI,
		c.config.SecretStoreConfirmTimeout,
	)
}

// initRotationSchedulerUseCase creates the rotation scheduler use case with
// its metrics decorator when metrics are enabled.
func (c *Container) initRotationSchedulerUseCase() (rotationUseCase.RotationSchedulerUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for rotation scheduler use case: %w", err)
	}

	rotationRepo, err := c.RotationRecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get rotation record repository for rotation scheduler use case: %w", err)
	}

	credentialRepo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for rotation scheduler use case: %w", err)
	}

	secretStore, err := c.SecretStoreConfirmer()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret store confirmer for rotation scheduler use case: %w", err)
	}

	auditLog, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for rotation scheduler use case: %w", err)
	}

	useCase := rotationUseCase.NewRotationSchedulerUseCase(
		txManager,
		rotationRepo,
		credentialRepo,
		secretStore,
		auditLog,
		c.Gate(),
		c.KeyLocks(),
		rotationUseCase.SchedulerConfig{
			DefaultGracePeriod: c.config.DefaultGracePeriod,
			SweepBatchSize:     c.config.SweepBatchSize,
			SweepConcurrency:   c.config.SweepConcurrency,
		},
	)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for rotation scheduler use case: %w", err)
	}

	return rotationUseCase.NewRotationSchedulerUseCaseWithMetrics(useCase, businessMetrics), nil
}
