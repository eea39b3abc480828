package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
)

// MockCredentialUseCase is a mock implementation of CredentialUseCase.
type MockCredentialUseCase struct {
	mock.Mock
}

// Put mocks the Put method of CredentialUseCase.
func (m *MockCredentialUseCase) Put(
	ctx context.Context,
	input *credentialDomain.PutInput,
) (*credentialDomain.PutResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.PutResult), args.Error(1)
}

// GetDecrypted mocks the GetDecrypted method of CredentialUseCase.
func (m *MockCredentialUseCase) GetDecrypted(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	providerID int64,
	env credentialDomain.Environment,
) (*credentialDomain.DecryptedCredential, error) {
	args := m.Called(ctx, userID, category, providerID, env)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.DecryptedCredential), args.Error(1)
}

// ListForUser mocks the ListForUser method of CredentialUseCase.
func (m *MockCredentialUseCase) ListForUser(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	offset, limit int,
) ([]*credentialDomain.Summary, error) {
	args := m.Called(ctx, userID, category, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*credentialDomain.Summary), args.Error(1)
}

// Revoke mocks the Revoke method of CredentialUseCase.
func (m *MockCredentialUseCase) Revoke(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
) error {
	args := m.Called(ctx, userID, category, id)
	return args.Error(0)
}

// Activate mocks the Activate method of CredentialUseCase.
func (m *MockCredentialUseCase) Activate(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
) error {
	args := m.Called(ctx, userID, category, id)
	return args.Error(0)
}

// Delete mocks the Delete method of CredentialUseCase.
func (m *MockCredentialUseCase) Delete(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
) error {
	args := m.Called(ctx, userID, category, id)
	return args.Error(0)
}

// RecordUseError mocks the RecordUseError method of CredentialUseCase.
func (m *MockCredentialUseCase) RecordUseError(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
) (credentialDomain.Status, error) {
	args := m.Called(ctx, userID, category, id)
	return args.Get(0).(credentialDomain.Status), args.Error(1)
}

// MarkUsed mocks the MarkUsed method of CredentialUseCase.
func (m *MockCredentialUseCase) MarkUsed(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
) error {
	args := m.Called(ctx, userID, category, id)
	return args.Error(0)
}

// Rewrap mocks the Rewrap method of CredentialUseCase.
func (m *MockCredentialUseCase) Rewrap(
	ctx context.Context,
	category credentialDomain.Category,
	batchSize int,
) (*credentialDomain.RewrapResult, error) {
	args := m.Called(ctx, category, batchSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.RewrapResult), args.Error(1)
}
