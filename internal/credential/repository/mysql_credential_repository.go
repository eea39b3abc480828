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

// MySQLCredentialRepository implements Credential persistence for MySQL databases.
// IDs are stored as BINARY(16).
type MySQLCredentialRepository struct {
	db *sql.DB
}

// Upsert inserts the credential or replaces the row for the same scope. MySQL reports
// one affected row for an insert and two for an update.
func (m *MySQLCredentialRepository) Upsert(ctx context.Context, cred *credentialDomain.Credential) (bool, error) {
	table, err := tableFor(cred.Category)
	if err != nil {
		return false, err
	}
	querier := database.GetTx(ctx, m.db)

	id, err := cred.ID.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, user_id, provider_id, label, api_key_ciphertext, key_fingerprint,
			  last4, environment, status, error_count, version, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			  label = VALUES(label),
			  api_key_ciphertext = VALUES(api_key_ciphertext),
			  key_fingerprint = VALUES(key_fingerprint),
			  last4 = VALUES(last4),
			  status = 'active',
			  error_count = 0,
			  version = version + 1,
			  updated_at = VALUES(updated_at)`, table)

	result, err := querier.ExecContext(
		ctx,
		query,
		id,
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
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to upsert credential")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}

	stored, err := m.getByScope(ctx, querier, table, cred.UserID, cred.ProviderID, cred.Environment)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read upserted credential")
	}

	cred.ID = stored.ID
	cred.Version = stored.Version
	cred.CreatedAt = stored.CreatedAt
	cred.Status = credentialDomain.StatusActive
	cred.ErrorCount = 0
	return affected == 1, nil
}

func (m *MySQLCredentialRepository) getByScope(
	ctx context.Context,
	querier database.Querier,
	table string,
	userID, providerID int64,
	env credentialDomain.Environment,
) (*credentialDomain.Credential, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s
			  WHERE user_id = ? AND provider_id = ? AND environment = ?`, credentialColumns, table)
	return scanMySQLCredential(querier.QueryRowContext(ctx, query, userID, providerID, env))
}

// GetActive retrieves the active credential for the scope. Revoked and quarantined
// rows are reported as not found.
func (m *MySQLCredentialRepository) GetActive(
	ctx context.Context,
	category credentialDomain.Category,
	userID, providerID int64,
	env credentialDomain.Environment,
) (*credentialDomain.Credential, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}
	querier := database.GetTx(ctx, m.db)

	query := fmt.Sprintf(`SELECT %s FROM %s
			  WHERE user_id = ? AND provider_id = ? AND environment = ? AND status = 'active'
			  LIMIT 1`, credentialColumns, table)

	cred, err := scanMySQLCredential(querier.QueryRowContext(ctx, query, userID, providerID, env))
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
func (m *MySQLCredentialRepository) GetByID(
	ctx context.Context,
	category credentialDomain.Category,
	userID int64,
	id uuid.UUID,
) (*credentialDomain.Credential, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ? AND user_id = ?`, credentialColumns, table)

	cred, err := scanMySQLCredential(querier.QueryRowContext(ctx, query, idBytes, userID))
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
func (m *MySQLCredentialRepository) ListByUser(
	ctx context.Context,
	category credentialDomain.Category,
	userID int64,
	offset, limit int,
) ([]*credentialDomain.Credential, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}
	querier := database.GetTx(ctx, m.db)

	query := fmt.Sprintf(`SELECT %s FROM %s
			  WHERE user_id = ?
			  ORDER BY provider_id ASC, environment ASC
			  LIMIT ? OFFSET ?`, credentialColumns, table)

	rows, err := querier.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials")
	}
	return collectMySQLCredentials(rows, category)
}

// SetStatus changes the credential status. Activating clears the error counter.
func (m *MySQLCredentialRepository) SetStatus(
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
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := fmt.Sprintf(`UPDATE %s
			  SET status = ?, error_count = CASE WHEN ? THEN 0 ELSE error_count END, updated_at = ?
			  WHERE id = ?`, table)

	_, err = querier.ExecContext(ctx, query, status, status == credentialDomain.StatusActive, now, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to set credential status")
	}
	return nil
}

// IncrementErrorCount bumps the error counter and quarantines the row once the
// threshold is reached. MySQL evaluates SET assignments left to right, so status is
// computed before error_count changes.
func (m *MySQLCredentialRepository) IncrementErrorCount(
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
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := fmt.Sprintf(`UPDATE %s
			  SET status = CASE WHEN status = 'active' AND error_count + 1 >= ? THEN 'error' ELSE status END,
			  error_count = error_count + 1,
			  updated_at = ?
			  WHERE id = ? AND user_id = ?`, table)

	result, err := querier.ExecContext(ctx, query, threshold, now, idBytes, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to increment credential error count")
	}
	if err := requireRow(result); err != nil {
		return nil, err
	}

	selectQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ? AND user_id = ?`, credentialColumns, table)
	cred, err := scanMySQLCredential(querier.QueryRowContext(ctx, selectQuery, idBytes, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to read credential")
	}
	cred.Category = category
	return cred, nil
}

// MarkUsed stamps last_used_at and clears the consecutive error counter.
func (m *MySQLCredentialRepository) MarkUsed(
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
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := fmt.Sprintf(`UPDATE %s SET last_used_at = ?, error_count = 0
			  WHERE id = ? AND user_id = ?`, table)

	if _, err := querier.ExecContext(ctx, query, now, idBytes, userID); err != nil {
		return apperrors.Wrap(err, "failed to mark credential used")
	}
	return nil
}

// Delete removes the credential row.
func (m *MySQLCredentialRepository) Delete(
	ctx context.Context,
	category credentialDomain.Category,
	userID int64,
	id uuid.UUID,
) error {
	table, err := tableFor(category)
	if err != nil {
		return err
	}
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND user_id = ?`, table)

	result, err := querier.ExecContext(ctx, query, idBytes, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete credential")
	}
	return requireRow(result)
}

// ListAfter retrieves up to limit credentials with id greater than afterID.
func (m *MySQLCredentialRepository) ListAfter(
	ctx context.Context,
	category credentialDomain.Category,
	afterID uuid.UUID,
	limit int,
) ([]*credentialDomain.Credential, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}
	querier := database.GetTx(ctx, m.db)

	afterBytes, err := afterID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id > ? ORDER BY id ASC LIMIT ?`, credentialColumns, table)

	rows, err := querier.QueryContext(ctx, query, afterBytes, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials")
	}
	return collectMySQLCredentials(rows, category)
}

// SwapCiphertext replaces the ciphertext only when it still equals old.
func (m *MySQLCredentialRepository) SwapCiphertext(
	ctx context.Context,
	category credentialDomain.Category,
	id uuid.UUID,
	old, updated cryptoDomain.EncryptedSecret,
) (bool, error) {
	table, err := tableFor(category)
	if err != nil {
		return false, err
	}
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := fmt.Sprintf(`UPDATE %s SET api_key_ciphertext = ?
			  WHERE id = ? AND api_key_ciphertext = ?`, table)

	result, err := querier.ExecContext(ctx, query, updated, idBytes, old)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to swap credential ciphertext")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return affected == 1, nil
}

// NewMySQLCredentialRepository creates a new MySQL Credential repository instance.
func NewMySQLCredentialRepository(db *sql.DB) *MySQLCredentialRepository {
	return &MySQLCredentialRepository{db: db}
}

func scanMySQLCredential(row rowScanner) (*credentialDomain.Credential, error) {
	var cred credentialDomain.Credential
	var id []byte

	err := row.Scan(
		&id,
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

	if err := cred.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal credential id")
	}
	return &cred, nil
}

func collectMySQLCredentials(
	rows *sql.Rows,
	category credentialDomain.Category,
) ([]*credentialDomain.Credential, error) {
	defer func() {
		_ = rows.Close()
	}()

	creds := make([]*credentialDomain.Credential, 0)
	for rows.Next() {
		cred, err := scanMySQLCredential(rows)
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
