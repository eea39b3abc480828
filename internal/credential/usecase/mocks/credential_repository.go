// Package mocks provides mock implementations of the credential use case interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	cryptoDomain "github.com/allisson/tradejournal/internal/crypto/domain"
)

// MockCredentialRepository is a mock implementation of CredentialRepository.
type MockCredentialRepository struct {
	mock.Mock
}

// Upsert mocks the Upsert method of CredentialRepository.
func (m *MockCredentialRepository) Upsert(ctx context.Context, cred *credentialDomain.Credential) (bool, error) {
	args := m.Called(ctx, cred)
	return args.Bool(0), args.Error(1)
}

// GetActive mocks the GetActive method of CredentialRepository.
func (m *MockCredentialRepository) GetActive(
	ctx context.Context,
	category credentialDomain.Category,
	userID, providerID int64,
	env credentialDomain.Environment,
) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, category, userID, providerID, env)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credential), args.Error(1)
}

// GetByID mocks the GetByID method of CredentialRepository.
func (m *MockCredentialRepository) GetByID(
	ctx context.Context,
	category credentialDomain.Category,
	userID int64,
	id uuid.UUID,
) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, category, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credential), args.Error(1)
}

// ListByUser mocks the ListByUser method of CredentialRepository.
func (m *MockCredentialRepository) ListByUser(
	ctx context.Context,
	category credentialDomain.Category,
	userID int64,
	offset, limit int,
) ([]*credentialDomain.Credential, error) {
	args := m.Called(ctx, category, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*credentialDomain.Credential), args.Error(1)
}

// SetStatus mocks the SetStatus method of CredentialRepository.
func (m *MockCredentialRepository) SetStatus(
	ctx context.Context,
	category credentialDomain.Category,
	id uuid.UUID,
	status credentialDomain.Status,
	now time.Time,
) error {
	args := m.Called(ctx, category, id, status, now)
	return args.Error(0)
}

// IncrementErrorCount mocks the IncrementErrorCount method of CredentialRepository.
func (m *MockCredentialRepository) IncrementErrorCount(
	ctx context.Context,
	category credentialDomain.Category,
	userID int64,
	id uuid.UUID,
	threshold int,
	now time.Time,
) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, category, userID, id, threshold, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credential), args.Error(1)
}

// MarkUsed mocks the MarkUsed method of CredentialRepository.
func (m *MockCredentialRepository) MarkUsed(
	ctx context.Context,
	category credentialDomain.Category,
	userID int64,
	id uuid.UUID,
	now time.Time,
) error {
	args := m.Called(ctx, category, userID, id, now)
	return args.Error(0)
}

// Delete mocks the Delete method of CredentialRepository.
func (m *MockCredentialRepository) Delete(
	ctx context.Context,
	category credentialDomain.Category,
	userID int64,
	id uuid.UUID,
) error {
	args := m.Called(ctx, category, userID, id)
	return args.Error(0)
}

// ListAfter mocks the ListAfter method of CredentialRepository.
func (m *MockCredentialRepository) ListAfter(
	ctx context.Context,
	category credentialDomain.Category,
	afterID uuid.UUID,
	limit int,
) ([]*credentialDomain.Credential, error) {
	args := m.Called(ctx, category, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*credentialDomain.Credential), args.Error(1)
}

// SwapCiphertext mocks the SwapCiphertext method of CredentialRepository.
func (m *MockCredentialRepository) SwapCiphertext(
	ctx context.Context,
	category credentialDomain.Category,
	id uuid.UUID,
	old, updated cryptoDomain.EncryptedSecret,
) (bool, error) {
	args := m.Called(ctx, category, id, old, updated)
	return args.Bool(0), args.Error(1)
}
