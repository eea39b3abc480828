package repository

import (
	"context"
	"database/sql"
	"errors"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	"github.com/allisson/tradejournal/internal/database"
	apperrors "github.com/allisson/tradejournal/internal/errors"
	providerDomain "github.com/allisson/tradejournal/internal/provider/domain"
)

// MySQLProviderRepository implements Provider persistence for MySQL databases.
type MySQLProviderRepository struct {
	db *sql.DB
}

// GetByID retrieves a provider by its id.
func (m *MySQLProviderRepository) GetByID(ctx context.Context, id int64) (*providerDomain.Provider, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + providerColumns + ` FROM providers WHERE id = ?`

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
func (m *MySQLProviderRepository) List(
	ctx context.Context,
	category credentialDomain.Category,
	offset, limit int,
) ([]*providerDomain.Provider, error) {
	querier := database.GetTx(ctx, m.db)

	var rows *sql.Rows
	var err error
	if category == "" {
		query := `SELECT ` + providerColumns + ` FROM providers ORDER BY name ASC LIMIT ? OFFSET ?`
		rows, err = querier.QueryContext(ctx, query, limit, offset)
	} else {
		query := `SELECT ` + providerColumns + ` FROM providers WHERE category = ?
				  ORDER BY name ASC LIMIT ? OFFSET ?`
		rows, err = querier.QueryContext(ctx, query, category, limit, offset)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list providers")
	}
	return collectProviders(rows)
}

// Upsert inserts the provider or replaces the row with the same name. MySQL reports one
// affected row for an insert and two for an update.
func (m *MySQLProviderRepository) Upsert(ctx context.Context, provider *providerDomain.Provider) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO providers (category, name, base_url, operations, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			  category = VALUES(category),
			  base_url = VALUES(base_url),
			  operations = VALUES(operations),
			  updated_at = VALUES(updated_at)`

	result, err := querier.ExecContext(
		ctx,
		query,
		provider.Category,
		provider.Name,
		provider.BaseURL,
		string(provider.Operations),
		provider.CreatedAt,
		provider.UpdatedAt,
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to upsert provider")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}

	err = querier.QueryRowContext(
		ctx,
		`SELECT id, created_at FROM providers WHERE name = ?`,
		provider.Name,
	).Scan(&provider.ID, &provider.CreatedAt)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read upserted provider")
	}

	return affected == 1, nil
}

// NewMySQLProviderRepository creates a new MySQL Provider repository.
func NewMySQLProviderRepository(db *sql.DB) *MySQLProviderRepository {
	return &MySQLProviderRepository{db: db}
}
