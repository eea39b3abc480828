package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	"github.com/allisson/tradejournal/internal/database"
	apperrors "github.com/allisson/tradejournal/internal/errors"
)

var columnNames = []string{
	"id", "user_id", "provider_id", "label", "api_key_ciphertext", "key_fingerprint", "last4",
	"environment", "status", "error_count", "version", "last_used_at", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func credentialRow(id driver.Value, status string, errorCount int, now time.Time) []driver.Value {
	return []driver.Value{
		id, int64(42), int64(1), "primary", "k1:payload", "fp", "1234",
		"live", status, int64(errorCount), int64(3), nil, now, now,
	}
}

func TestNewPostgreSQLCredentialRepository(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewPostgreSQLCredentialRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &PostgreSQLCredentialRepository{}, repo)
}

func TestPostgreSQLCredentialRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		inserted bool
		version  int64
	}{
		{"insert", true, 1},
		{"update", false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewPostgreSQLCredentialRepository(db)

			storedID := uuid.Must(uuid.NewV7())
			createdAt := now.Add(-time.Hour)
			cred := &credentialDomain.Credential{
				ID:          uuid.Must(uuid.NewV7()),
				UserID:      42,
				Category:    credentialDomain.CategoryAI,
				ProviderID:  1,
				Label:       "primary",
				Ciphertext:  "k1:payload",
				Fingerprint: "fp",
				Last4:       "1234",
				Environment: credentialDomain.EnvironmentLive,
				CreatedAt:   now,
				UpdatedAt:   now,
			}

			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO ai_credentials")).
				WithArgs(
					cred.ID, int64(42), int64(1), "primary", "k1:payload", "fp", "1234",
					"live", "active", 0, 1, now, now,
				).
				WillReturnRows(
					sqlmock.NewRows([]string{"id", "version", "created_at", "inserted"}).
						AddRow(storedID.String(), tt.version, createdAt, tt.inserted),
				)

			inserted, err := repo.Upsert(ctx, cred)
			require.NoError(t, err)
			assert.Equal(t, tt.inserted, inserted)
			assert.Equal(t, storedID, cred.ID)
			assert.Equal(t, tt.version, cred.Version)
			assert.Equal(t, createdAt, cred.CreatedAt)
			assert.Equal(t, credentialDomain.StatusActive, cred.Status)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgreSQLCredentialRepository_Upsert_UsesSingleStatement(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLCredentialRepository(db)

	mock.ExpectQuery(`ON CONFLICT \(user_id, provider_id, environment\) DO UPDATE SET`).
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "version", "created_at", "inserted"}).
				AddRow(uuid.Must(uuid.NewV7()).String(), int64(1), time.Now(), true),
		)

	_, err := repo.Upsert(context.Background(), &credentialDomain.Credential{Category: credentialDomain.CategoryTrade})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLCredentialRepository_Upsert_InvalidCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLCredentialRepository(db)

	_, err := repo.Upsert(context.Background(), &credentialDomain.Credential{Category: "users; DROP TABLE x"})
	assert.ErrorIs(t, err, credentialDomain.ErrInvalidCategory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLCredentialRepository_GetActive(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLCredentialRepository(db)
		id := uuid.Must(uuid.NewV7())

		mock.ExpectQuery(regexp.QuoteMeta("FROM news_credentials")).
			WithArgs(int64(42), int64(1), "live").
			WillReturnRows(sqlmock.NewRows(columnNames).AddRow(credentialRow(id.String(), "active", 0, now)...))

		cred, err := repo.GetActive(ctx, credentialDomain.CategoryNews, 42, 1, credentialDomain.EnvironmentLive)
		require.NoError(t, err)
		assert.Equal(t, id, cred.ID)
		assert.Equal(t, credentialDomain.CategoryNews, cred.Category)
		assert.Equal(t, credentialDomain.StatusActive, cred.Status)
		assert.Equal(t, "1234", cred.Last4)
		assert.Equal(t, int64(3), cred.Version)
		assert.Nil(t, cred.LastUsedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLCredentialRepository(db)

		mock.ExpectQuery(`status = 'active'`).
			WillReturnRows(sqlmock.NewRows(columnNames))

		cred, err := repo.GetActive(ctx, credentialDomain.CategoryNews, 42, 1, credentialDomain.EnvironmentLive)
		assert.Nil(t, cred)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("DatabaseError", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLCredentialRepository(db)

		mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection refused"))

		_, err := repo.GetActive(ctx, credentialDomain.CategoryNews, 42, 1, credentialDomain.EnvironmentLive)
		assert.ErrorContains(t, err, "failed to get active credential")
		assert.False(t, errors.Is(err, apperrors.ErrNotFound))
	})
}

func TestPostgreSQLCredentialRepository_ListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLCredentialRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM data_credentials")).
		WithArgs(int64(42), 10, 20).
		WillReturnRows(
			sqlmock.NewRows(columnNames).
				AddRow(credentialRow(uuid.Must(uuid.NewV7()).String(), "active", 0, now)...).
				AddRow(credentialRow(uuid.Must(uuid.NewV7()).String(), "revoked", 0, now)...),
		)

	creds, err := repo.ListByUser(context.Background(), credentialDomain.CategoryData, 42, 20, 10)
	require.NoError(t, err)
	require.Len(t, creds, 2)
	assert.Equal(t, credentialDomain.StatusRevoked, creds[1].Status)
	assert.Equal(t, credentialDomain.CategoryData, creds[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLCredentialRepository_SetStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	id := uuid.Must(uuid.NewV7())

	t.Run("Activate resets errors", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLCredentialRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE ai_credentials")).
			WithArgs("active", true, now, id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SetStatus(ctx, credentialDomain.CategoryAI, id, credentialDomain.StatusActive, now))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Revoke keeps errors", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLCredentialRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE ai_credentials")).
			WithArgs("revoked", false, now, id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SetStatus(ctx, credentialDomain.CategoryAI, id, credentialDomain.StatusRevoked, now))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLCredentialRepository(db)

		mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SetStatus(ctx, credentialDomain.CategoryAI, id, credentialDomain.StatusRevoked, now)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestPostgreSQLCredentialRepository_IncrementErrorCount(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	id := uuid.Must(uuid.NewV7())

	t.Run("Quarantines at threshold", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLCredentialRepository(db)

		mock.ExpectQuery(`status = CASE WHEN status = 'active' AND error_count \+ 1 >= \$1 THEN 'error'`).
			WithArgs(5, now, id, int64(42)).
			WillReturnRows(sqlmock.NewRows(columnNames).AddRow(credentialRow(id.String(), "error", 5, now)...))

		cred, err := repo.IncrementErrorCount(ctx, credentialDomain.CategoryAI, 42, id, 5, now)
		require.NoError(t, err)
		assert.Equal(t, credentialDomain.StatusError, cred.Status)
		assert.Equal(t, 5, cred.ErrorCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLCredentialRepository(db)

		mock.ExpectQuery("UPDATE").WillReturnRows(sqlmock.NewRows(columnNames))

		_, err := repo.IncrementErrorCount(ctx, credentialDomain.CategoryAI, 42, id, 5, now)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestPostgreSQLCredentialRepository_MarkUsed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLCredentialRepository(db)
	now := time.Now().UTC()
	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec(regexp.QuoteMeta("SET last_used_at = $1, error_count = 0")).
		WithArgs(now, id, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkUsed(context.Background(), credentialDomain.CategoryTrade, 42, id, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLCredentialRepository_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLCredentialRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ai_credentials WHERE id = $1 AND user_id = $2")).
			WithArgs(id, int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(ctx, credentialDomain.CategoryAI, 42, id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLCredentialRepository(db)

		mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, credentialDomain.CategoryAI, 42, id), apperrors.ErrNotFound)
	})
}

func TestPostgreSQLCredentialRepository_ListAfter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLCredentialRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id > $1 ORDER BY id ASC LIMIT $2")).
		WithArgs(uuid.Nil, 100).
		WillReturnRows(sqlmock.NewRows(columnNames))

	creds, err := repo.ListAfter(context.Background(), credentialDomain.CategoryAI, uuid.Nil, 100)
	require.NoError(t, err)
	assert.Empty(t, creds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLCredentialRepository_SwapCiphertext(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"swapped", 1, true},
		{"concurrently replaced", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewPostgreSQLCredentialRepository(db)

			mock.ExpectExec(regexp.QuoteMeta("SET api_key_ciphertext = $1")).
				WithArgs("k2:new", id, "k1:old").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			swapped, err := repo.SwapCiphertext(ctx, credentialDomain.CategoryAI, id, "k1:old", "k2:new")
			require.NoError(t, err)
			assert.Equal(t, tt.want, swapped)
		})
	}
}

func TestPostgreSQLCredentialRepository_UsesTransactionFromContext(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLCredentialRepository(db)
	txManager := database.NewTxManager(db)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectBegin()
	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		return repo.Delete(ctx, credentialDomain.CategoryAI, 42, id)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
