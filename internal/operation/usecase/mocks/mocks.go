// Package mocks provides mock implementations of the operation use case interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	operationDomain "github.com/allisson/tradejournal/internal/operation/domain"
)

// MockOperationUseCase is a mock implementation of OperationUseCase.
type MockOperationUseCase struct {
	mock.Mock
}

// Execute mocks the Execute method of OperationUseCase.
func (m *MockOperationUseCase) Execute(
	ctx context.Context,
	input *operationDomain.ExecuteInput,
) (*operationDomain.Result, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*operationDomain.Result), args.Error(1)
}
