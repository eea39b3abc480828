// Package repository implements provider catalog persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	"github.com/allisson/tradejournal/internal/database"
	apperrors "github.com/allisson/tradejournal/internal/errors"
	providerDomain "github.com/allisson/tradejournal/internal/provider/domain"
)

const providerColumns = `id, category, name, base_url, operations, created_at, updated_at`

// PostgreSQLProviderRepository implements Provider persistence for PostgreSQL databases.
type PostgreSQLProviderRepository struct {
	db *sql.DB
}

// GetByID retrieves a provider by its id.
func (p *PostgreSQLProviderRepository) GetByID(ctx context.Context, id int64) (*providerDomain.Provider, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + providerColumns + ` FROM providers WHERE id = $1`

	provider, err := scanProvider(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, providerDomain.ErrProviderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get provider by id")
	}
	return provider, nil
}

// List retrieves providers ordered by name. An empty category lists every provider.
func (p *PostgreSQLProviderRepository) List(
	ctx context.Context,
	category credentialDomain.Category,
	offset, limit int,
) ([]*providerDomain.Provider, error) {
	querier := database.GetTx(ctx, p.db)

	var rows *sql.Rows
	var err error
	if category == "" {
		query := `SELECT ` + providerColumns + ` FROM providers ORDER BY name ASC LIMIT $1 OFFSET $2`
		rows, err = querier.QueryContext(ctx, query, limit, offset)
	} else {
		query := `SELECT ` + providerColumns + ` FROM providers WHERE category = $1
				  ORDER BY name ASC LIMIT $2 OFFSET $3`
		rows, err = querier.QueryContext(ctx, query, category, limit, offset)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list providers")
	}
	return collectProviders(rows)
}

// Upsert inserts the provider or replaces the row with the same name.
func (p *PostgreSQLProviderRepository) Upsert(ctx context.Context, provider *providerDomain.Provider) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO providers (category, name, base_url, operations, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (name) DO UPDATE SET
			  category = EXCLUDED.category,
			  base_url = EXCLUDED.base_url,
			  operations = EXCLUDED.operations,
			  updated_at = EXCLUDED.updated_at
			  RETURNING id, created_at, (xmax = 0) AS inserted`

	var inserted bool
	err := querier.QueryRowContext(
		ctx,
		query,
		provider.Category,
		provider.Name,
		provider.BaseURL,
		string(provider.Operations),
		provider.CreatedAt,
		provider.UpdatedAt,
	).Scan(&provider.ID, &provider.CreatedAt, &inserted)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to upsert provider")
	}
	return inserted, nil
}

// NewPostgreSQLProviderRepository creates a new PostgreSQL Provider repository.
func NewPostgreSQLProviderRepository(db *sql.DB) *PostgreSQLProviderRepository {
	return &PostgreSQLProviderRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProvider(row rowScanner) (*providerDomain.Provider, error) {
	var provider providerDomain.Provider
	var operations []byte
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&provider.ID,
		&provider.Category,
		&provider.Name,
		&provider.BaseURL,
		&operations,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	provider.Operations = append([]byte(nil), operations...)
	provider.CreatedAt = createdAt.UTC()
	provider.UpdatedAt = updatedAt.UTC()
	return &provider, nil
}

func collectProviders(rows *sql.Rows) ([]*providerDomain.Provider, error) {
	defer func() {
		_ = rows.Close()
	}()

	providers := make([]*providerDomain.Provider, 0)
	for rows.Next() {
		provider, err := scanProvider(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan provider")
		}
		providers = append(providers, provider)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating providers")
	}
	return providers, nil
}
