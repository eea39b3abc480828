// Package mocks provides mock implementations of the provider use case interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	providerDomain "github.com/allisson/tradejournal/internal/provider/domain"
)

// MockProviderRepository is a mock implementation of ProviderRepository.
type MockProviderRepository struct {
	mock.Mock
}

// GetByID mocks the GetByID method of ProviderRepository.
func (m *MockProviderRepository) GetByID(ctx context.Context, id int64) (*providerDomain.Provider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providerDomain.Provider), args.Error(1)
}

// List mocks the List method of ProviderRepository.
func (m *MockProviderRepository) List(
	ctx context.Context,
	category credentialDomain.Category,
	offset, limit int,
) ([]*providerDomain.Provider, error) {
	args := m.Called(ctx, category, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*providerDomain.Provider), args.Error(1)
}

// Upsert mocks the Upsert method of ProviderRepository.
func (m *MockProviderRepository) Upsert(ctx context.Context, provider *providerDomain.Provider) (bool, error) {
	args := m.Called(ctx, provider)
	return args.Bool(0), args.Error(1)
}

// MockProviderUseCase is a mock implementation of ProviderUseCase.
type MockProviderUseCase struct {
	mock.Mock
}

// Get mocks the Get method of ProviderUseCase.
func (m *MockProviderUseCase) Get(ctx context.Context, id int64) (*providerDomain.Provider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providerDomain.Provider), args.Error(1)
}

// List mocks the List method of ProviderUseCase.
func (m *MockProviderUseCase) List(
	ctx context.Context,
	category credentialDomain.Category,
	offset, limit int,
) ([]*providerDomain.Provider, error) {
	args := m.Called(ctx, category, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*providerDomain.Provider), args.Error(1)
}

// Lint mocks the Lint method of ProviderUseCase.
func (m *MockProviderUseCase) Lint(ctx context.Context) ([]*providerDomain.LintReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*providerDomain.LintReport), args.Error(1)
}

// Import mocks the Import method of ProviderUseCase.
func (m *MockProviderUseCase) Import(
	ctx context.Context,
	providers []*providerDomain.Provider,
) (*providerDomain.ImportResult, error) {
	args := m.Called(ctx, providers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providerDomain.ImportResult), args.Error(1)
}
