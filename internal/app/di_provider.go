package app

import (
	"fmt"

	"github.com/allisson/tradejournal/internal/database"
	providerHTTP "github.com/allisson/tradejournal/internal/provider/http"
	providerRepository "github.com/allisson/tradejournal/internal/provider/repository"
	providerUseCase "github.com/allisson/tradejournal/internal/provider/usecase"
)

// ProviderRepository returns the provider repository based on database driver.
func (c *Container) ProviderRepository() (providerUseCase.ProviderRepository, error) {
	var err error
	c.providerRepositoryInit.Do(func() {
		c.providerRepository, err = c.initProviderRepository()
		if err != nil {
			c.initErrors["providerRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["providerRepository"]; exists {
		return nil, storedErr
	}
	return c.providerRepository, nil
}

// ProviderUseCase returns the provider use case.
func (c *Container) ProviderUseCase() (providerUseCase.ProviderUseCase, error) {
	var err error
	c.providerUseCaseInit.Do(func() {
		c.providerUseCase, err = c.initProviderUseCase()
		if err != nil {
			c.initErrors["providerUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["providerUseCase"]; exists {
		return nil, storedErr
	}
	return c.providerUseCase, nil
}

// ProviderHandler returns the provider HTTP handler.
func (c *Container) ProviderHandler() (*providerHTTP.ProviderHandler, error) {
	var err error
	c.providerHandlerInit.Do(func() {
		c.providerHandler, err = c.initProviderHandler()
		if err != nil {
			c.initErrors["providerHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["providerHandler"]; exists {
		return nil, storedErr
	}
	return c.providerHandler, nil
}

// initProviderRepository creates the provider repository based on the database driver.
func (c *Container) initProviderRepository() (providerUseCase.ProviderRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for provider repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return providerRepository.NewPostgreSQLProviderRepository(db), nil
	case database.DriverMySQL:
		return providerRepository.NewMySQLProviderRepository(db), nil
	default:
		return nil, database.CheckDriver(c.config.DBDriver)
	}
}

// initProviderUseCase creates the provider use case with all its dependencies.
func (c *Container) initProviderUseCase() (providerUseCase.ProviderUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for provider use case: %w", err)
	}

	repo, err := c.ProviderRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get provider repository for provider use case: %w", err)
	}

	baseUseCase := providerUseCase.NewProviderUseCase(txManager, repo, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for provider use case: %w", err)
		}
		return providerUseCase.NewProviderUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initProviderHandler creates the provider HTTP handler.
func (c *Container) initProviderHandler() (*providerHTTP.ProviderHandler, error) {
	useCase, err := c.ProviderUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get provider use case for provider handler: %w", err)
	}
	return providerHTTP.NewProviderHandler(useCase, c.Logger()), nil
}
