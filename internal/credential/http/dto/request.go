// Package dto provides data transfer objects for the credential HTTP handlers.
package dto

import (
	validation "github.com/jellydator/validation"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	customValidation "github.com/allisson/tradejournal/internal/validation"
)

// PutCredentialRequest contains the parameters for storing a provider API key.
// The category comes from the URL.
type PutCredentialRequest struct {
	ProviderID  int64  `json:"provider_id"`
	APIKey      string `json:"api_key"`
	Label       string `json:"label"`
	Environment string `json:"environment"`
}

// Validate checks if the put credential request is valid.
func (r *PutCredentialRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ProviderID,
			validation.Required,
			validation.Min(int64(1)),
		),
		validation.Field(&r.APIKey,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoControlChars,
			validation.Length(1, 4096),
		),
		validation.Field(&r.Label,
			customValidation.NoControlChars,
			validation.Length(0, 255),
		),
		validation.Field(&r.Environment,
			validation.In(string(credentialDomain.EnvironmentLive), string(credentialDomain.EnvironmentTest)),
		),
	)
}

// ToInput converts the request to the use case input.
func (r *PutCredentialRequest) ToInput(userID int64, category credentialDomain.Category) *credentialDomain.PutInput {
	return &credentialDomain.PutInput{
		UserID:      userID,
		Category:    category,
		ProviderID:  r.ProviderID,
		Secret:      r.APIKey,
		Label:       r.Label,
		Environment: credentialDomain.Environment(r.Environment),
	}
}
