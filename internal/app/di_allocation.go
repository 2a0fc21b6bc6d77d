package app

import (
	"fmt"

	allocationHTTP "github.com/allisson/credentials/internal/allocation/http"
	allocationRepository "github.com/allisson/credentials/internal/allocation/repository"
	allocationUseCase "github.com/allisson/credentials/internal/allocation/usecase"
)

// AllocationRepository returns the allocation repository instance.
func (c *Container) AllocationRepository() (allocationUseCase.AllocationRepository, error) {
	var err error
	c.allocationRepoInit.Do(func() {
		c.allocationRepo, err = c.initAllocationRepository()
		if err != nil {
			c.initErrors["allocationRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["allocationRepo"]; exists {
		return nil, storedErr
	}
	return c.allocationRepo, nil
}

// AllocationManagerUseCase returns the allocation manager use case instance.
func (c *Container) AllocationManagerUseCase() (allocationUseCase.AllocationManagerUseCase, error) {
	var err error
	c.allocationManagerUseCaseInit.Do(func() {
		c.allocationManagerUseCase, err = c.initAllocationManagerUseCase()
		if err != nil {
			c.initErrors["allocationManagerUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["allocationManagerUseCase"]; exists {
		return nil, storedErr
	}
	return c.allocationManagerUseCase, nil
}

// AllocationHandler returns the allocation HTTP handler.
func (c *Container) AllocationHandler() (*allocationHTTP.AllocationHandler, error) {
	useCase, err := c.AllocationManagerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get allocation manager use case for allocation handler: %w", err)
	}
	return allocationHTTP.NewAllocationHandler(useCase, c.Logger()), nil
}

// initAllocationRepository creates the allocation repository based on the
// configured database driver.
func (c *Container) initAllocationRepository() (allocationUseCase.AllocationRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for allocation repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return allocationRepository.NewMySQLAllocationRepository(db), nil
	case "postgres":
		return allocationRepository.NewPostgreSQLAllocationRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAllocationManagerUseCase creates the allocation manager use case with
// its metrics decorator when metrics are enabled.
func (c *Container) initAllocationManagerUseCase() (allocationUseCase.AllocationManagerUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for allocation manager use case: %w", err)
	}

	allocationRepo, err := c.AllocationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get allocation repository for allocation manager use case: %w", err)
	}

	credentialRepo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for allocation manager use case: %w", err)
	}

	auditLog, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for allocation manager use case: %w", err)
	}

	useCase := allocationUseCase.NewAllocationManagerUseCase(
		txManager,
		allocationRepo,
		credentialRepo,
		auditLog,
		c.Gate(),
		c.KeyLocks(),
	)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for allocation manager use case: %w", err)
	}

	return allocationUseCase.NewAllocationManagerUseCaseWithMetrics(useCase, businessMetrics), nil
}
