// Package usecase implements the operation engine: it resolves a catalog descriptor and
// the caller's credential, calls the provider and classifies the outcome.
package usecase

import (
	"context"

	operationDomain "github.com/allisson/tradejournal/internal/operation/domain"
)

// OperationUseCase executes provider operations on behalf of a user.
type OperationUseCase interface {
	// Execute runs one operation. Every failure the engine can classify is returned as
	// *operationDomain.Error; other errors are infrastructure failures.
	Execute(ctx context.Context, input *operationDomain.ExecuteInput) (*operationDomain.Result, error)
}
