package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	cryptoService "github.com/allisson/tradejournal/internal/crypto/service"
	"github.com/allisson/tradejournal/internal/database"
	apperrors "github.com/allisson/tradejournal/internal/errors"
)

// credentialUseCase implements CredentialUseCase.
type credentialUseCase struct {
	txManager      database.TxManager
	credentialRepo CredentialRepository
	providers      ProviderReader
	cipher         cryptoService.SecretCipher
	errorThreshold int
	now            func() time.Time
}

// Put encrypts the secret and upserts the row for the scope.
func (c *credentialUseCase) Put(
	ctx context.Context,
	input *credentialDomain.PutInput,
) (*credentialDomain.PutResult, error) {
	if !input.Category.Valid() {
		return nil, credentialDomain.ErrInvalidCategory
	}
	env, err := credentialDomain.ParseEnvironment(string(input.Environment))
	if err != nil {
		return nil, err
	}
	secret := strings.TrimSpace(input.Secret)
	if secret == "" {
		return nil, credentialDomain.ErrEmptySecret
	}

	provider, err := c.providers.GetByID(ctx, input.ProviderID)
	if err != nil {
		return nil, err
	}
	if provider.Category != input.Category {
		return nil, credentialDomain.ErrCategoryMismatch
	}

	ciphertext, err := c.cipher.Encrypt(secret)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt credential")
	}

	now := c.now()
	cred := &credentialDomain.Credential{
		ID:          uuid.Must(uuid.NewV7()),
		UserID:      input.UserID,
		Category:    input.Category,
		ProviderID:  input.ProviderID,
		Label:       strings.TrimSpace(input.Label),
		Ciphertext:  ciphertext,
		Fingerprint: credentialDomain.Fingerprint(secret),
		Last4:       credentialDomain.Last4(secret),
		Environment: env,
		Status:      credentialDomain.StatusActive,
		ErrorCount:  0,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var created bool
	err = c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = c.credentialRepo.Upsert(txCtx, cred)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &credentialDomain.PutResult{Credential: cred.Summary(), Created: created}, nil
}

// GetDecrypted loads the active row and decrypts it.
func (c *credentialUseCase) GetDecrypted(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	providerID int64,
	env credentialDomain.Environment,
) (*credentialDomain.DecryptedCredential, error) {
	if !category.Valid() {
		return nil, credentialDomain.ErrInvalidCategory
	}
	env, err := credentialDomain.ParseEnvironment(string(env))
	if err != nil {
		return nil, err
	}

	cred, err := c.credentialRepo.GetActive(ctx, category, userID, providerID, env)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, credentialDomain.ErrCredentialNotFound
		}
		return nil, err
	}

	secret, err := c.cipher.Decrypt(cred.Ciphertext)
	if err == nil && secret == "" {
		err = apperrors.Wrap(apperrors.ErrInvalidInput, "stored ciphertext is empty")
	}
	if err != nil {
		return nil, &credentialDomain.UnreadableError{
			CredentialID: cred.ID,
			Category:     category,
			Cause:        err,
		}
	}

	return &credentialDomain.DecryptedCredential{
		ID:       cred.ID,
		Category: category,
		Secret:   secret,
	}, nil
}

// ListForUser returns the user's credentials in category without secret material.
func (c *credentialUseCase) ListForUser(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	offset, limit int,
) ([]*credentialDomain.Summary, error) {
	if !category.Valid() {
		return nil, credentialDomain.ErrInvalidCategory
	}

	creds, err := c.credentialRepo.ListByUser(ctx, category, userID, offset, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]*credentialDomain.Summary, 0, len(creds))
	for _, cred := range creds {
		summaries = append(summaries, cred.Summary())
	}
	return summaries, nil
}

// Revoke marks the credential revoked.
func (c *credentialUseCase) Revoke(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
) error {
	return c.transition(ctx, userID, category, id, credentialDomain.StatusRevoked)
}

// Activate puts the credential back in service and clears its error counter.
func (c *credentialUseCase) Activate(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
) error {
	return c.transition(ctx, userID, category, id, credentialDomain.StatusActive)
}

// transition moves a credential to status inside a transaction. It is a no-op when
// the credential is already there.
func (c *credentialUseCase) transition(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
	status credentialDomain.Status,
) error {
	if !category.Valid() {
		return credentialDomain.ErrInvalidCategory
	}

	return c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		cred, err := c.credentialRepo.GetByID(txCtx, category, userID, id)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return credentialDomain.ErrCredentialNotFound
			}
			return err
		}
		if cred.Status == status {
			return nil
		}
		return c.credentialRepo.SetStatus(txCtx, category, id, status, c.now())
	})
}

// Delete removes the credential row.
func (c *credentialUseCase) Delete(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
) error {
	if !category.Valid() {
		return credentialDomain.ErrInvalidCategory
	}

	if err := c.credentialRepo.Delete(ctx, category, userID, id); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return credentialDomain.ErrCredentialNotFound
		}
		return err
	}
	return nil
}

// RecordUseError increments the error counter and reports the new status.
func (c *credentialUseCase) RecordUseError(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
) (credentialDomain.Status, error) {
	if !category.Valid() {
		return "", credentialDomain.ErrInvalidCategory
	}

	cred, err := c.credentialRepo.IncrementErrorCount(ctx, category, userID, id, c.errorThreshold, c.now())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return "", credentialDomain.ErrCredentialNotFound
		}
		return "", err
	}
	return cred.Status, nil
}

// MarkUsed records a successful use.
func (c *credentialUseCase) MarkUsed(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
) error {
	if !category.Valid() {
		return credentialDomain.ErrInvalidCategory
	}
	return c.credentialRepo.MarkUsed(ctx, category, userID, id, c.now())
}

// Rewrap walks the category in id order and re-encrypts stale blobs. A row that
// cannot be decrypted is counted as failed and left untouched.
func (c *credentialUseCase) Rewrap(
	ctx context.Context,
	category credentialDomain.Category,
	batchSize int,
) (*credentialDomain.RewrapResult, error) {
	if !category.Valid() {
		return nil, credentialDomain.ErrInvalidCategory
	}
	if batchSize <= 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "batch size must be positive")
	}

	result := &credentialDomain.RewrapResult{}
	afterID := uuid.Nil

	for {
		creds, err := c.credentialRepo.ListAfter(ctx, category, afterID, batchSize)
		if err != nil {
			return result, err
		}

		for _, cred := range creds {
			result.Scanned++
			afterID = cred.ID

			if !c.cipher.NeedsRewrap(cred.Ciphertext) {
				continue
			}

			secret, err := c.cipher.Decrypt(cred.Ciphertext)
			if err != nil {
				result.Failed++
				continue
			}
			updated, err := c.cipher.Encrypt(secret)
			if err != nil {
				return result, apperrors.Wrap(err, "failed to encrypt credential")
			}

			swapped, err := c.credentialRepo.SwapCiphertext(ctx, category, cred.ID, cred.Ciphertext, updated)
			if err != nil {
				return result, err
			}
			if swapped {
				result.Rewrapped++
			}
		}

		if len(creds) < batchSize {
			return result, nil
		}
	}
}

// NewCredentialUseCase creates a new CredentialUseCase. errorThreshold is the number
// of consecutive provider rejections that quarantines a credential.
func NewCredentialUseCase(
	txManager database.TxManager,
	credentialRepo CredentialRepository,
	providers ProviderReader,
	cipher cryptoService.SecretCipher,
	errorThreshold int,
) CredentialUseCase {
	if errorThreshold < 1 {
		errorThreshold = 1
	}
	return &credentialUseCase{
		txManager:      txManager,
		credentialRepo: credentialRepo,
		providers:      providers,
		cipher:         cipher,
		errorThreshold: errorThreshold,
		now:            func() time.Time { return time.Now().UTC() },
	}
}
