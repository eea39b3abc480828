// Package dto provides data transfer objects for the provider HTTP handlers.
package dto

import (
	"time"

	providerDomain "github.com/allisson/tradejournal/internal/provider/domain"
)

// ProviderResponse represents a provider in API responses. Descriptors are not exposed,
// only the operation names a client can execute.
type ProviderResponse struct {
	ID           int64     `json:"id"`
	Category     string    `json:"category"`
	Name         string    `json:"name"`
	Operations   []string  `json:"operations"`
	CatalogValid bool      `json:"catalog_valid"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListProvidersResponse represents a paginated list of providers in API responses.
type ListProvidersResponse struct {
	Data []ProviderResponse `json:"data"`
}

// MapProvidersToListResponse converts domain providers to a list response.
func MapProvidersToListResponse(providers []*providerDomain.Provider) ListProvidersResponse {
	data := make([]ProviderResponse, 0, len(providers))
	for _, provider := range providers {
		data = append(data, ProviderResponse{
			ID:           provider.ID,
			Category:     string(provider.Category),
			Name:         provider.Name,
			Operations:   provider.OperationNames(),
			CatalogValid: provider.Catalog != nil,
			UpdatedAt:    provider.UpdatedAt,
		})
	}
	return ListProvidersResponse{Data: data}
}
