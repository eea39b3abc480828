// Package usecase implements the credential store: encrypted upserts, lookups that
// decrypt on demand, and the error counter that quarantines rejected keys.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	cryptoDomain "github.com/allisson/tradejournal/internal/crypto/domain"
	providerDomain "github.com/allisson/tradejournal/internal/provider/domain"
)

// ProviderReader resolves the provider a credential is stored for.
type ProviderReader interface {
	GetByID(ctx context.Context, id int64) (*providerDomain.Provider, error)
}

// CredentialRepository defines credential persistence. Every method takes the
// category because each category lives in its own table.
type CredentialRepository interface {
	// Upsert inserts cred or replaces the row with the same (user, provider, environment),
	// resetting status and error count. It fills ID, Version and CreatedAt from the stored
	// row and reports whether a new row was created.
	Upsert(ctx context.Context, cred *credentialDomain.Credential) (bool, error)
	GetActive(
		ctx context.Context,
		category credentialDomain.Category,
		userID, providerID int64,
		env credentialDomain.Environment,
	) (*credentialDomain.Credential, error)
	GetByID(
		ctx context.Context,
		category credentialDomain.Category,
		userID int64,
		id uuid.UUID,
	) (*credentialDomain.Credential, error)
	ListByUser(
		ctx context.Context,
		category credentialDomain.Category,
		userID int64,
		offset, limit int,
	) ([]*credentialDomain.Credential, error)
	SetStatus(
		ctx context.Context,
		category credentialDomain.Category,
		id uuid.UUID,
		status credentialDomain.Status,
		now time.Time,
	) error
	// IncrementErrorCount atomically bumps the counter and flips an active row to
	// error once the counter reaches threshold. Returns the updated row.
	IncrementErrorCount(
		ctx context.Context,
		category credentialDomain.Category,
		userID int64,
		id uuid.UUID,
		threshold int,
		now time.Time,
	) (*credentialDomain.Credential, error)
	MarkUsed(
		ctx context.Context,
		category credentialDomain.Category,
		userID int64,
		id uuid.UUID,
		now time.Time,
	) error
	Delete(ctx context.Context, category credentialDomain.Category, userID int64, id uuid.UUID) error
	// ListAfter pages through every row of a category ordered by id.
	ListAfter(
		ctx context.Context,
		category credentialDomain.Category,
		afterID uuid.UUID,
		limit int,
	) ([]*credentialDomain.Credential, error)
	// SwapCiphertext replaces the ciphertext only if it still equals old. Reports whether
	// the row was updated.
	SwapCiphertext(
		ctx context.Context,
		category credentialDomain.Category,
		id uuid.UUID,
		old, updated cryptoDomain.EncryptedSecret,
	) (bool, error)
}

// CredentialUseCase defines the credential store operations.
type CredentialUseCase interface {
	// Put encrypts and stores a credential, replacing any existing one for the scope.
	Put(ctx context.Context, input *credentialDomain.PutInput) (*credentialDomain.PutResult, error)

	// GetDecrypted returns the active credential for the scope in plaintext.
	// Returns ErrCredentialNotFound when none is usable and *UnreadableError when the
	// row exists but cannot be decrypted.
	GetDecrypted(
		ctx context.Context,
		userID int64,
		category credentialDomain.Category,
		providerID int64,
		env credentialDomain.Environment,
	) (*credentialDomain.DecryptedCredential, error)

	// ListForUser returns summaries only; no secret material leaves the store.
	ListForUser(
		ctx context.Context,
		userID int64,
		category credentialDomain.Category,
		offset, limit int,
	) ([]*credentialDomain.Summary, error)

	// Revoke marks a credential revoked. Revoking twice is not an error.
	Revoke(ctx context.Context, userID int64, category credentialDomain.Category, id uuid.UUID) error

	// Activate returns a revoked or quarantined credential to service.
	Activate(ctx context.Context, userID int64, category credentialDomain.Category, id uuid.UUID) error

	// Delete removes the row permanently.
	Delete(ctx context.Context, userID int64, category credentialDomain.Category, id uuid.UUID) error

	// RecordUseError counts a provider rejection and returns the resulting status.
	RecordUseError(
		ctx context.Context,
		userID int64,
		category credentialDomain.Category,
		id uuid.UUID,
	) (credentialDomain.Status, error)

	// MarkUsed stamps last_used_at and clears the consecutive error counter.
	MarkUsed(ctx context.Context, userID int64, category credentialDomain.Category, id uuid.UUID) error

	// Rewrap re-encrypts every credential in category not written under the active key.
	Rewrap(
		ctx context.Context,
		category credentialDomain.Category,
		batchSize int,
	) (*credentialDomain.RewrapResult, error)
}
