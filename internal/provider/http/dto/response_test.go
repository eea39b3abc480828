package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	providerDomain "github.com/allisson/tradejournal/internal/provider/domain"
)

func TestMapProvidersToListResponse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid and invalid catalogs", func(t *testing.T) {
		response := MapProvidersToListResponse([]*providerDomain.Provider{
			{
				ID:       1,
				Category: credentialDomain.CategoryAI,
				Name:     "openai",
				Catalog: providerDomain.Catalog{
					"vs.files": &providerDomain.Descriptor{},
					"models":   &providerDomain.Descriptor{},
				},
				UpdatedAt: now,
			},
			{ID: 2, Category: credentialDomain.CategoryNews, Name: "broken", UpdatedAt: now},
		})

		assert.Len(t, response.Data, 2)
		assert.Equal(t, []string{"models", "vs.files"}, response.Data[0].Operations)
		assert.True(t, response.Data[0].CatalogValid)
		assert.Equal(t, "ai", response.Data[0].Category)
		assert.Empty(t, response.Data[1].Operations)
		assert.NotNil(t, response.Data[1].Operations)
		assert.False(t, response.Data[1].CatalogValid)
	})

	t.Run("empty list", func(t *testing.T) {
		response := MapProvidersToListResponse(nil)
		assert.NotNil(t, response.Data)
		assert.Empty(t, response.Data)
	})
}
