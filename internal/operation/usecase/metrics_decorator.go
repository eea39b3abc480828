package usecase

import (
	"context"
	"time"

	"github.com/allisson/tradejournal/internal/metrics"
	operationDomain "github.com/allisson/tradejournal/internal/operation/domain"
)

// operationUseCaseWithMetrics decorates OperationUseCase with metrics instrumentation.
type operationUseCaseWithMetrics struct {
	next    OperationUseCase
	metrics metrics.BusinessMetrics
}

// NewOperationUseCaseWithMetrics wraps an OperationUseCase with metrics recording.
// The status label is the failure kind so dashboards can tell catalog, credential and
// provider failures apart.
func NewOperationUseCaseWithMetrics(useCase OperationUseCase, m metrics.BusinessMetrics) OperationUseCase {
	return &operationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Execute records metrics for operation execution.
func (o *operationUseCaseWithMetrics) Execute(
	ctx context.Context,
	input *operationDomain.ExecuteInput,
) (*operationDomain.Result, error) {
	start := time.Now()
	result, err := o.next.Execute(ctx, input)

	status := metrics.StatusFromError(err)
	if kind := operationDomain.KindOf(err); kind != "" {
		status = string(kind)
	}
	o.metrics.RecordOperation(ctx, "operations", "operation_execute", status)
	o.metrics.RecordDuration(ctx, "operations", "operation_execute", time.Since(start), status)

	return result, err
}
