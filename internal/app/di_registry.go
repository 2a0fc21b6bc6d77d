package app

import (
	"fmt"

	registryHTTP "github.com/allisson/credentials/internal/registry/http"
	registryRepository "github.com/allisson/credentials/internal/registry/repository"
	registryUseCase "github.com/allisson/credentials/internal/registry/usecase"
)

// CredentialRepository returns the credential repository instance.
func (c *Container) CredentialRepository() (registryUseCase.CredentialRepository, error) {
	var err error
	c.credentialRepoInit.Do(func() {
		c.credentialRepo, err = c.initCredentialRepository()
		if err != nil {
			c.initErrors["credentialRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialRepo"]; exists {
		return nil, storedErr
	}
	return c.credentialRepo, nil
}

// KeyRegistryUseCase returns the key registry use case instance.
func (c *Container) KeyRegistryUseCase() (registryUseCase.KeyRegistryUseCase, error) {
	var err error
	c.keyRegistryUseCaseInit.Do(func() {
		c.keyRegistryUseCase, err = c.initKeyRegistryUseCase()
		if err != nil {
			c.initErrors["keyRegistryUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyRegistryUseCase"]; exists {
		return nil, storedErr
	}
	return c.keyRegistryUseCase, nil
}

// KeyHandler returns the key registry HTTP handler.
func (c *Container) KeyHandler() (*registryHTTP.KeyHandler, error) {
	useCase, err := c.KeyRegistryUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key registry use case for key handler: %w", err)
	}
	return registryHTTP.NewKeyHandler(useCase, c.Logger()), nil
}

// initCredentialRepository creates the credential repository based on the
// configured database driver.
func (c *Container) initCredentialRepository() (registryUseCase.CredentialRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for credential repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return registryRepository.NewMySQLCredentialRepository(db), nil
	case "postgres":
		return registryRepository.NewPostgreSQLCredentialRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initKeyRegistryUseCase creates the key registry use case with its metrics
// decorator when metrics are enabled.
func (c *Container) initKeyRegistryUseCase() (registryUseCase.KeyRegistryUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for key registry use case: %w", err)
	}

	credentialRepo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for key registry use case: %w", err)
	}

	auditLog, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for key registry use case: %w", err)
	}

	useCase := registryUseCase.NewKeyRegistryUseCase(
		txManager,
		credentialRepo,
		auditLog,
		c.Gate(),
		c.KeyLocks(),
	)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for key registry use case: %w", err)
	}

	return registryUseCase.NewKeyRegistryUseCaseWithMetrics(useCase, businessMetrics), nil
}
