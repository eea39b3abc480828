package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	cryptoDomain "github.com/allisson/tradejournal/internal/crypto/domain"
	"github.com/allisson/tradejournal/internal/database"
	apperrors "github.com/allisson/tradejournal/internal/errors"
)

// PostgreSQLCredentialRepository implements Credential persistence for PostgreSQL databases.
type PostgreSQLCredentialRepository struct {
	db *sql.DB
}

// Upsert inserts the credential or replaces the row for the same scope in a single
// statement. xmax is zero only for freshly inserted tuples.
func (p *PostgreSQLCredentialRepository) Upsert(ctx context.Context, cred *credentialDomain.Credential) (bool, error) {
	table, err := tableFor(cred.Category)
	if err != nil {
		return false, err
	}
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`INSERT INTO %[1]s (id, user_id, provider_id, label, api_key_ciphertext, key_fingerprint,
			  last4, environment, status, error_count, version, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			  ON CONFLICT (user_id, provider_id, environment) DO UPDATE SET
			  label = EXCLUDED.label,
			  api_key_ciphertext = EXCLUDED.api_key_ciphertext,
			  key_fingerprint = EXCLUDED.key_fingerprint,
			  last4 = EXCLUDED.last4,
			  status = 'active',
			  error_count = 0,
			  version = %[1]s.version + 1,
			  updated_at = EXCLUDED.updated_at
			  RETURNING id, version, created_at, (xmax = 0) AS inserted`, table)

	var inserted bool
	err = querier.QueryRowContext(
		ctx,
		query,
		cred.ID,
		cred.UserID,
		cred.ProviderID,
		cred.Label,
		cred.Ciphertext,
		cred.Fingerprint,
		cred.Last4,
		cred.Environment,
		credentialDomain.StatusActive,
		0,
		1,
		cred.CreatedAt,
		cred.UpdatedAt,
	).Scan(&cred.ID, &cred.Version, &cred.CreatedAt, &inserted)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to upsert credential")
	}

	cred.Status = credentialDomain.StatusActive
	cred.ErrorCount = 0
	return inserted, nil
}

// GetActive retrieves the active credential for the scope. Revoked and quarantined
// rows are reported as not found.
func (p *PostgreSQLCredentialRepository) GetActive(
	ctx context.Context,
	category credentialDomain.Category,
	userID, providerID int64,
	env credentialDomain.Environment,
) (*credentialDomain.Credential, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`SELECT %s FROM %s
			  WHERE user_id = $1 AND provider_id = $2 AND environment = $3 AND status = 'active'
			  LIMIT 1`, credentialColumns, table)

	cred, err := scanCredential(querier.QueryRowContext(ctx, query, userID, providerID, env))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get active credential")
	}
	cred.Category = category
	return cred, nil
}

// GetByID retrieves a credential owned by userID regardless of its status.
func (p *PostgreSQLCredentialRepository) GetByID(
	ctx context.Context,
	category credentialDomain.Category,
	userID int64,
	id uuid.UUID,
) (*credentialDomain.Credential, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND user_id = $2`, credentialColumns, table)

	cred, err := scanCredential(querier.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get credential by id")
	}
	cred.Category = category
	return cred, nil
}

// ListByUser retrieves the user's credentials ordered by provider and environment.
func (p *PostgreSQLCredentialRepository) ListByUser(
	ctx context.Context,
	category credentialDomain.Category,
	userID int64,
	offset, limit int,
) ([]*credentialDomain.Credential, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`SELECT %s FROM %s
			  WHERE user_id = $1
			  ORDER BY provider_id ASC, environment ASC
			  LIMIT $2 OFFSET $3`, credentialColumns, table)

	rows, err := querier.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials")
	}
	return collectCredentials(rows, category)
}

// SetStatus changes the credential status. Activating clears the error counter.
func (p *PostgreSQLCredentialRepository) SetStatus(
	ctx context.Context,
	category credentialDomain.Category,
	id uuid.UUID,
	status credentialDomain.Status,
	now time.Time,
) error {
	table, err := tableFor(category)
	if err != nil {
		return err
	}
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`UPDATE %s
			  SET status = $1, error_count = CASE WHEN $2 THEN 0 ELSE error_count END, updated_at = $3
			  WHERE id = $4`, table)

	result, err := querier.ExecContext(ctx, query, status, status == credentialDomain.StatusActive, now, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to set credential status")
	}
	return requireRow(result)
}

// IncrementErrorCount bumps the error counter and quarantines the row once the
// threshold is reached. Every right-hand side sees the pre-update row.
func (p *PostgreSQLCredentialRepository) IncrementErrorCount(
	ctx context.Context,
	category credentialDomain.Category,
	userID int64,
	id uuid.UUID,
	threshold int,
	now time.Time,
) (*credentialDomain.Credential, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`UPDATE %s
			  SET error_count = error_count + 1,
			  status = CASE WHEN status = 'active' AND error_count + 1 >= $1 THEN 'error' ELSE status END,
			  updated_at = $2
			  WHERE id = $3 AND user_id = $4
			  RETURNING %s`, table, credentialColumns)

	cred, err := scanCredential(querier.QueryRowContext(ctx, query, threshold, now, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to increment credential error count")
	}
	cred.Category = category
	return cred, nil
}

// MarkUsed stamps last_used_at and clears the consecutive error counter.
func (p *PostgreSQLCredentialRepository) MarkUsed(
	ctx context.Context,
	category credentialDomain.Category,
	userID int64,
	id uuid.UUID,
	now time.Time,
) error {
	table, err := tableFor(category)
	if err != nil {
		return err
	}
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`UPDATE %s SET last_used_at = $1, error_count = 0
			  WHERE id = $2 AND user_id = $3`, table)

	if _, err := querier.ExecContext(ctx, query, now, id, userID); err != nil {
		return apperrors.Wrap(err, "failed to mark credential used")
	}
	return nil
}

// Delete removes the credential row.
func (p *PostgreSQLCredentialRepository) Delete(
	ctx context.Context,
	category credentialDomain.Category,
	userID int64,
	id uuid.UUID,
) error {
	table, err := tableFor(category)
	if err != nil {
		return err
	}
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, table)

	result, err := querier.ExecContext(ctx, query, id, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete credential")
	}
	return requireRow(result)
}

// ListAfter retrieves up to limit credentials with id greater than afterID.
func (p *PostgreSQLCredentialRepository) ListAfter(
	ctx context.Context,
	category credentialDomain.Category,
	afterID uuid.UUID,
	limit int,
) ([]*credentialDomain.Credential, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id > $1 ORDER BY id ASC LIMIT $2`, credentialColumns, table)

	rows, err := querier.QueryContext(ctx, query, afterID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials")
	}
	return collectCredentials(rows, category)
}

// SwapCiphertext replaces the ciphertext only when it still equals old.
func (p *PostgreSQLCredentialRepository) SwapCiphertext(
	ctx context.Context,
	category credentialDomain.Category,
	id uuid.UUID,
	old, updated cryptoDomain.EncryptedSecret,
) (bool, error) {
	table, err := tableFor(category)
	if err != nil {
		return false, err
	}
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`UPDATE %s SET api_key_ciphertext = $1
			  WHERE id = $2 AND api_key_ciphertext = $3`, table)

	result, err := querier.ExecContext(ctx, query, updated, id, old)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to swap credential ciphertext")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return affected == 1, nil
}

// NewPostgreSQLCredentialRepository creates a new PostgreSQL Credential repository instance.
func NewPostgreSQLCredentialRepository(db *sql.DB) *PostgreSQLCredentialRepository {
	return &PostgreSQLCredentialRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*credentialDomain.Credential, error) {
	var cred credentialDomain.Credential
	err := row.Scan(
		&cred.ID,
		&cred.UserID,
		&cred.ProviderID,
		&cred.Label,
		&cred.Ciphertext,
		&cred.Fingerprint,
		&cred.Last4,
		&cred.Environment,
		&cred.Status,
		&cred.ErrorCount,
		&cred.Version,
		&cred.LastUsedAt,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func collectCredentials(rows *sql.Rows, category credentialDomain.Category) ([]*credentialDomain.Credential, error) {
	defer func() {
		_ = rows.Close()
	}()

	creds := make([]*credentialDomain.Credential, 0)
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan credential")
		}
		cred.Category = category
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate credentials")
	}
	return creds, nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
