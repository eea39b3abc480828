// Package dto provides data transfer objects for the operation HTTP handler.
package dto

import (
	"fmt"
	"sort"

	validation "github.com/jellydator/validation"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	operationDomain "github.com/allisson/tradejournal/internal/operation/domain"
	customValidation "github.com/allisson/tradejournal/internal/validation"
)

const (
	maxParams          = 64
	maxParamValueBytes = 8192
)

// ExecuteOperationRequest contains the template params for one operation call.
// Provider and operation come from the URL.
type ExecuteOperationRequest struct {
	Params      map[string]string `json:"params"`
	Environment string            `json:"environment"`
}

// Validate checks if the execute request is valid.
func (r *ExecuteOperationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Params,
			validation.Length(0, maxParams),
			validation.By(validParamNames),
			validation.Each(validation.Length(0, maxParamValueBytes)),
		),
		validation.Field(&r.Environment,
			validation.In(string(credentialDomain.EnvironmentLive), string(credentialDomain.EnvironmentTest)),
		),
	)
}

func validParamNames(value any) error {
	params, _ := value.(map[string]string)
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := customValidation.FieldName.Validate(name); err != nil || name == "" {
			return fmt.Errorf("invalid param name %q", name)
		}
	}
	return nil
}

// ToInput converts the request to the use case input.
func (r *ExecuteOperationRequest) ToInput(userID, providerID int64, operation string) *operationDomain.ExecuteInput {
	return &operationDomain.ExecuteInput{
		UserID:      userID,
		ProviderID:  providerID,
		Operation:   operation,
		Params:      r.Params,
		Environment: credentialDomain.Environment(r.Environment),
	}
}
