package app

import (
	"fmt"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/allisson/tradejournal/internal/metrics"
	operationHTTP "github.com/allisson/tradejournal/internal/operation/http"
	operationService "github.com/allisson/tradejournal/internal/operation/service"
	operationUseCase "github.com/allisson/tradejournal/internal/operation/usecase"
)

// OperationCaller returns the outbound HTTP caller used for provider operations.
func (c *Container) OperationCaller() (operationService.Caller, error) {
	var err error
	c.operationCallerInit.Do(func() {
		c.operationCaller, err = c.initOperationCaller()
		if err != nil {
			c.initErrors["operationCaller"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["operationCaller"]; exists {
		return nil, storedErr
	}
	return c.operationCaller, nil
}

// OperationUseCase returns the operation execution use case.
func (c *Container) OperationUseCase() (operationUseCase.OperationUseCase, error) {
	var err error
	c.operationUseCaseInit.Do(func() {
		c.operationUseCase, err = c.initOperationUseCase()
		if err != nil {
			c.initErrors["operationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["operationUseCase"]; exists {
		return nil, storedErr
	}
	return c.operationUseCase, nil
}

// OperationHandler returns the operation HTTP handler.
func (c *Container) OperationHandler() (*operationHTTP.OperationHandler, error) {
	var err error
	c.operationHandlerInit.Do(func() {
		c.operationHandler, err = c.initOperationHandler()
		if err != nil {
			c.initErrors["operationHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["operationHandler"]; exists {
		return nil, storedErr
	}
	return c.operationHandler, nil
}

// initOperationCaller creates the caller with a metered transport.
func (c *Container) initOperationCaller() (operationService.Caller, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for operation caller: %w", err)
	}

	transport := metrics.NewOutboundTransport(nil, noop.NewMeterProvider())
	if provider != nil {
		transport = metrics.NewOutboundTransport(nil, provider.MeterProvider())
	}

	return operationService.NewHTTPCaller(
		transport,
		c.config.OperationTimeout,
		c.config.OperationMaxResponseBytes,
	), nil
}

// initOperationUseCase creates the operation use case with all its dependencies.
func (c *Container) initOperationUseCase() (operationUseCase.OperationUseCase, error) {
	providers, err := c.ProviderUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get provider use case for operation use case: %w", err)
	}

	credentials, err := c.CredentialUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential use case for operation use case: %w", err)
	}

	caller, err := c.OperationCaller()
	if err != nil {
		return nil, fmt.Errorf("failed to get caller for operation use case: %w", err)
	}

	baseUseCase := operationUseCase.NewOperationUseCase(providers, credentials, caller, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for operation use case: %w", err)
		}
		return operationUseCase.NewOperationUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initOperationHandler creates the operation HTTP handler.
func (c *Container) initOperationHandler() (*operationHTTP.OperationHandler, error) {
	useCase, err := c.OperationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get operation use case for operation handler: %w", err)
	}
	return operationHTTP.NewOperationHandler(useCase, c.Logger()), nil
}
