package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	authzHTTP "github.com/allisson/credentials/internal/authz/http"
	authzRepository "github.com/allisson/credentials/internal/authz/repository"
	authzService "github.com/allisson/credentials/internal/authz/service"
	authzUseCase "github.com/allisson/credentials/internal/authz/usecase"
)

// PrincipalRepository returns the principal repository instance.
func (c *Container) PrincipalRepository() (authzUseCase.PrincipalRepository, error) {
	var err error
	c.principalRepoInit.Do(func() {
		c.principalRepo, err = c.initPrincipalRepository()
		if err != nil {
			c.initErrors["principalRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["principalRepo"]; exists {
		return nil, storedErr
	}
	return c.principalRepo, nil
}

// TokenRepository returns the token repository instance.
func (c *Container) TokenRepository() (authzUseCase.TokenRepository, error) {
	var err error
	c.tokenRepoInit.Do(func() {
		c.tokenRepo, err = c.initTokenRepository()
		if err != nil {
			c.initErrors["tokenRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenRepo"]; exists {
		return nil, storedErr
	}
	return c.tokenRepo, nil
}

// SecretService returns the secret hashing service instance.
func (c *Container) SecretService() authzService.SecretService {
	c.secretServiceInit.Do(func() {
		c.secretService = authzService.NewSecretService()
	})
	return c.secretService
}

// TokenService returns the token generation service instance.
func (c *Container) TokenService() authzService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = authzService.NewTokenService()
	})
	return c.tokenService
}

// PrincipalUseCase returns the principal use case instance.
func (c *Container) PrincipalUseCase() (authzUseCase.PrincipalUseCase, error) {
	var err error
	c.principalUseCaseInit.Do(func() {
		c.principalUseCase, err = c.initPrincipalUseCase()
		if err != nil {
			c.initErrors["principalUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["principalUseCase"]; exists {
		return nil, storedErr
	}
	return c.principalUseCase, nil
}

// TokenUseCase returns the token use case instance.
func (c *Container) TokenUseCase() (authzUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// Gate returns the authorization gate shared by all use cases.
func (c *Container) Gate() authzUseCase.AuthorizationGate {
	c.gateInit.Do(func() {
		c.gate = authzUseCase.NewAuthorizationGate()
	})
	return c.gate
}

// tokenHandler creates the token HTTP handler.
func (c *Container) tokenHandler(tokenUseCase authzUseCase.TokenUseCase) *authzHTTP.TokenHandler {
	return authzHTTP.NewTokenHandler(tokenUseCase, c.Logger())
}

// authMiddleware creates the bearer token authentication middleware.
func (c *Container) authMiddleware(tokenUseCase authzUseCase.TokenUseCase) gin.HandlerFunc {
	return authzHTTP.AuthenticationMiddleware(tokenUseCase, c.TokenService(), c.Logger())
}

// initPrincipalRepository creates the principal repository based on the
// configured database driver.
func (c *Container) initPrincipalRepository() (authzUseCase.PrincipalRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for principal repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return authzRepository.NewMySQLPrincipalRepository(db), nil
	case "postgres":
		return authzRepository.NewPostgreSQLPrincipalRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTokenRepository creates the token repository based on the configured
// database driver.
func (c *Container) initTokenRepository() (authzUseCase.TokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return authzRepository.NewMySQLTokenRepository(db), nil
	case "postgres":
		return authzRepository.NewPostgreSQLTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initPrincipalUseCase creates the principal use case.
func (c *Container) initPrincipalUseCase() (authzUseCase.PrincipalUseCase, error) {
	principalRepo, err := c.PrincipalRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get principal repository for principal use case: %w", err)
	}
	return authzUseCase.NewPrincipalUseCase(principalRepo, c.SecretService()), nil
}

// initTokenUseCase creates the token use case with its metrics decorator when
// metrics are enabled.
func (c *Container) initTokenUseCase() (authzUseCase.TokenUseCase, error) {
	principalRepo, err := c.PrincipalRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get principal repository for token use case: %w", err)
	}

	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for token use case: %w", err)
	}

	useCase := authzUseCase.NewTokenUseCase(
		c.config,
		principalRepo,
		tokenRepo,
		c.SecretService(),
		c.TokenService(),
	)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
	}

	return authzUseCase.NewTokenUseCaseWithMetrics(useCase, businessMetrics), nil
}
