package app

import (
	"encoding/base64"
	"fmt"

	auditRepository "github.com/allisson/credentials/internal/audit/repository"
	auditService "github.com/allisson/credentials/internal/audit/service"
	auditUseCase "github.com/allisson/credentials/internal/audit/usecase"
)

// AuditEntryRepository returns the audit entry repository instance.
func (c *Container) AuditEntryRepository() (auditUseCase.AuditEntryRepository, error) {
	var err error
	c.auditRepoInit.Do(func() {
		c.auditRepo, err = c.initAuditEntryRepository()
		if err != nil {
			c.initErrors["auditRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRepo"]; exists {
		return nil, storedErr
	}
	return c.auditRepo, nil
}

// ChainHasher returns the audit chain hasher instance.
func (c *Container) ChainHasher() (auditService.ChainHasher, error) {
	var err error
	c.chainHasherInit.Do(func() {
		c.chainHasher, err = c.initChainHasher()
		if err != nil {
			c.initErrors["chainHasher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["chainHasher"]; exists {
		return nil, storedErr
	}
	return c.chainHasher, nil
}

// AuditLogUseCase returns the audit log use case instance.
func (c *Container) AuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	var err error
	c.auditLogUseCaseInit.Do(func() {
		c.auditLogUseCase, err = c.initAuditLogUseCase()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditLogUseCase, nil
}

// initAuditEntryRepository creates the audit entry repository based on the
// configured database driver.
func (c *Container) initAuditEntryRepository() (auditUseCase.AuditEntryRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit entry repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return auditRepository.NewMySQLAuditEntryRepository(db), nil
	case "postgres":
		return auditRepository.NewPostgreSQLAuditEntryRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initChainHasher creates the chain hasher, keyed when a signing key is
// configured.
func (c *Container) initChainHasher() (auditService.ChainHasher, error) {
	var key []byte
	if c.config.AuditSigningKey != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.config.AuditSigningKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode audit signing key: %w", err)
		}
		key = decoded
	}
	return auditService.NewChainHasher(key)
}

// initAuditLogUseCase creates the audit log use case.
func (c *Container) initAuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	auditRepo, err := c.AuditEntryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entry repository for audit log use case: %w", err)
	}

	hasher, err := c.ChainHasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get chain hasher for audit log use case: %w", err)
	}

	return auditUseCase.NewAuditLogUseCase(auditRepo, hasher), nil
}
