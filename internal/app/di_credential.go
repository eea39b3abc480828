package app

import (
	"fmt"

	credentialHTTP "github.com/allisson/tradejournal/internal/credential/http"
	credentialRepository "github.com/allisson/tradejournal/internal/credential/repository"
	credentialUseCase "github.com/allisson/tradejournal/internal/credential/usecase"
	"github.com/allisson/tradejournal/internal/database"
)

// CredentialRepository returns the credential repository based on database driver.
func (c *Container) CredentialRepository() (credentialUseCase.CredentialRepository, error) {
	var err error
	c.credentialRepositoryInit.Do(func() {
		c.credentialRepository, err = c.initCredentialRepository()
		if err != nil {
			c.initErrors["credentialRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialRepository"]; exists {
		return nil, storedErr
	}
	return c.credentialRepository, nil
}

// CredentialUseCase returns the credential use case.
func (c *Container) CredentialUseCase() (credentialUseCase.CredentialUseCase, error) {
	var err error
	c.credentialUseCaseInit.Do(func() {
		c.credentialUseCase, err = c.initCredentialUseCase()
		if err != nil {
			c.initErrors["credentialUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialUseCase"]; exists {
		return nil, storedErr
	}
	return c.credentialUseCase, nil
}

// CredentialHandler returns the credential HTTP handler.
func (c *Container) CredentialHandler() (*credentialHTTP.CredentialHandler, error) {
	var err error
	c.credentialHandlerInit.Do(func() {
		c.credentialHandler, err = c.initCredentialHandler()
		if err != nil {
			c.initErrors["credentialHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialHandler"]; exists {
		return nil, storedErr
	}
	return c.credentialHandler, nil
}

// initCredentialRepository creates the credential repository based on the database driver.
func (c *Container) initCredentialRepository() (credentialUseCase.CredentialRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for credential repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return credentialRepository.NewPostgreSQLCredentialRepository(db), nil
	case database.DriverMySQL:
		return credentialRepository.NewMySQLCredentialRepository(db), nil
	default:
		return nil, database.CheckDriver(c.config.DBDriver)
	}
}

// initCredentialUseCase creates the credential use case with all its dependencies.
func (c *Container) initCredentialUseCase() (credentialUseCase.CredentialUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for credential use case: %w", err)
	}

	repo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for credential use case: %w", err)
	}

	providers, err := c.ProviderRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get provider repository for credential use case: %w", err)
	}

	cipher, err := c.SecretCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret cipher for credential use case: %w", err)
	}

	baseUseCase := credentialUseCase.NewCredentialUseCase(
		txManager,
		repo,
		providers,
		cipher,
		c.config.CredentialErrorThreshold,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for credential use case: %w", err)
		}
		return credentialUseCase.NewCredentialUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initCredentialHandler creates the credential HTTP handler.
func (c *Container) initCredentialHandler() (*credentialHTTP.CredentialHandler, error) {
	useCase, err := c.CredentialUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential use case for credential handler: %w", err)
	}
	return credentialHTTP.NewCredentialHandler(useCase, c.Logger()), nil
}
