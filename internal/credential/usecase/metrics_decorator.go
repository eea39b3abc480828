package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	"github.com/allisson/tradejournal/internal/metrics"
)

const metricsDomain = "credentials"

// credentialUseCaseWithMetrics decorates CredentialUseCase with metrics instrumentation.
type credentialUseCaseWithMetrics struct {
	next    CredentialUseCase
	metrics metrics.BusinessMetrics
}

// NewCredentialUseCaseWithMetrics wraps a CredentialUseCase with metrics recording.
func NewCredentialUseCaseWithMetrics(useCase CredentialUseCase, m metrics.BusinessMetrics) CredentialUseCase {
	return &credentialUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *credentialUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusFromError(err)
	c.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	c.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Put records metrics for credential upserts.
func (c *credentialUseCaseWithMetrics) Put(
	ctx context.Context,
	input *credentialDomain.PutInput,
) (*credentialDomain.PutResult, error) {
	start := time.Now()
	result, err := c.next.Put(ctx, input)
	c.record(ctx, "credential_put", start, err)
	return result, err
}

// GetDecrypted records metrics for credential decryption. Unreadable credentials get
// their own status so rotation mistakes show up on dashboards.
func (c *credentialUseCaseWithMetrics) GetDecrypted(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	providerID int64,
	env credentialDomain.Environment,
) (*credentialDomain.DecryptedCredential, error) {
	start := time.Now()
	cred, err := c.next.GetDecrypted(ctx, userID, category, providerID, env)

	status := metrics.StatusFromError(err)
	switch {
	case err == nil:
	case credentialDomain.IsUnreadable(err):
		status = "unreadable"
	case credentialDomain.IsNotFound(err):
		status = "not_found"
	}

	c.metrics.RecordOperation(ctx, metricsDomain, "credential_get_decrypted", status)
	c.metrics.RecordDuration(ctx, metricsDomain, "credential_get_decrypted", time.Since(start), status)
	return cred, err
}

// ListForUser records metrics for credential listing.
func (c *credentialUseCaseWithMetrics) ListForUser(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	offset, limit int,
) ([]*credentialDomain.Summary, error) {
	start := time.Now()
	summaries, err := c.next.ListForUser(ctx, userID, category, offset, limit)
	c.record(ctx, "credential_list", start, err)
	return summaries, err
}

// Revoke records metrics for credential revocation.
func (c *credentialUseCaseWithMetrics) Revoke(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
) error {
	start := time.Now()
	err := c.next.Revoke(ctx, userID, category, id)
	c.record(ctx, "credential_revoke", start, err)
	return err
}

// Activate records metrics for credential re-activation.
func (c *credentialUseCaseWithMetrics) Activate(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
) error {
	start := time.Now()
	err := c.next.Activate(ctx, userID, category, id)
	c.record(ctx, "credential_activate", start, err)
	return err
}

// Delete records metrics for credential deletion.
func (c *credentialUseCaseWithMetrics) Delete(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
) error {
	start := time.Now()
	err := c.next.Delete(ctx, userID, category, id)
	c.record(ctx, "credential_delete", start, err)
	return err
}

// RecordUseError records metrics for provider rejections.
func (c *credentialUseCaseWithMetrics) RecordUseError(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
) (credentialDomain.Status, error) {
	start := time.Now()
	status, err := c.next.RecordUseError(ctx, userID, category, id)
	c.record(ctx, "credential_record_use_error", start, err)
	if err == nil && status == credentialDomain.StatusError {
		c.metrics.RecordQuarantine(ctx, string(category))
	}
	return status, err
}

// MarkUsed records metrics for successful credential use.
func (c *credentialUseCaseWithMetrics) MarkUsed(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
) error {
	start := time.Now()
	err := c.next.MarkUsed(ctx, userID, category, id)
	c.record(ctx, "credential_mark_used", start, err)
	return err
}

// Rewrap records metrics for rewrap passes.
func (c *credentialUseCaseWithMetrics) Rewrap(
	ctx context.Context,
	category credentialDomain.Category,
	batchSize int,
) (*credentialDomain.RewrapResult, error) {
	start := time.Now()
	result, err := c.next.Rewrap(ctx, category, batchSize)
	c.record(ctx, "credential_rewrap", start, err)
	return result, err
}
