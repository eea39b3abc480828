package usecase

import (
	"context"
	"time"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	"github.com/allisson/tradejournal/internal/metrics"
	providerDomain "github.com/allisson/tradejournal/internal/provider/domain"
)

// providerUseCaseWithMetrics decorates ProviderUseCase with metrics instrumentation.
type providerUseCaseWithMetrics struct {
	next    ProviderUseCase
	metrics metrics.BusinessMetrics
}

// NewProviderUseCaseWithMetrics wraps a ProviderUseCase with metrics recording.
func NewProviderUseCaseWithMetrics(useCase ProviderUseCase, m metrics.BusinessMetrics) ProviderUseCase {
	return &providerUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (p *providerUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusFromError(err)
	p.metrics.RecordOperation(ctx, "providers", operation, status)
	p.metrics.RecordDuration(ctx, "providers", operation, time.Since(start), status)
}

// Get records metrics for provider lookups.
func (p *providerUseCaseWithMetrics) Get(ctx context.Context, id int64) (*providerDomain.Provider, error) {
	start := time.Now()
	provider, err := p.next.Get(ctx, id)
	p.record(ctx, "provider_get", start, err)
	return provider, err
}

// List records metrics for provider listing.
func (p *providerUseCaseWithMetrics) List(
	ctx context.Context,
	category credentialDomain.Category,
	offset, limit int,
) ([]*providerDomain.Provider, error) {
	start := time.Now()
	providers, err := p.next.List(ctx, category, offset, limit)
	p.record(ctx, "provider_list", start, err)
	return providers, err
}

// Lint records metrics for catalog linting.
func (p *providerUseCaseWithMetrics) Lint(ctx context.Context) ([]*providerDomain.LintReport, error) {
	start := time.Now()
	reports, err := p.next.Lint(ctx)
	p.record(ctx, "provider_lint", start, err)
	return reports, err
}

// Import records metrics for catalog imports.
func (p *providerUseCaseWithMetrics) Import(
	ctx context.Context,
	providers []*providerDomain.Provider,
) (*providerDomain.ImportResult, error) {
	start := time.Now()
	result, err := p.next.Import(ctx, providers)
	p.record(ctx, "provider_import", start, err)
	return result, err
}
