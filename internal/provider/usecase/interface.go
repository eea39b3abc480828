// Package usecase loads provider catalogs, lints them and imports catalog files.
package usecase

import (
	"context"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	providerDomain "github.com/allisson/tradejournal/internal/provider/domain"
)

// ProviderRepository defines provider persistence.
type ProviderRepository interface {
	GetByID(ctx context.Context, id int64) (*providerDomain.Provider, error)
	// List returns providers ordered by name. An empty category lists every provider.
	List(
		ctx context.Context,
		category credentialDomain.Category,
		offset, limit int,
	) ([]*providerDomain.Provider, error)
	// Upsert inserts provider or replaces the row with the same name and reports whether
	// a new row was created.
	Upsert(ctx context.Context, provider *providerDomain.Provider) (bool, error)
}

// ProviderUseCase defines the provider catalog operations.
type ProviderUseCase interface {
	// Get returns the provider with its parsed catalog. A catalog that fails validation
	// is reported as *providerDomain.CatalogError.
	Get(ctx context.Context, id int64) (*providerDomain.Provider, error)

	// List returns providers. Providers whose catalog is invalid are included with a
	// nil Catalog so operators can still see them.
	List(
		ctx context.Context,
		category credentialDomain.Category,
		offset, limit int,
	) ([]*providerDomain.Provider, error)

	// Lint checks every stored catalog and returns a report per provider with issues.
	Lint(ctx context.Context) ([]*providerDomain.LintReport, error)

	// Import validates every provider and, only if all are valid, upserts them in one
	// transaction.
	Import(ctx context.Context, providers []*providerDomain.Provider) (*providerDomain.ImportResult, error)
}
