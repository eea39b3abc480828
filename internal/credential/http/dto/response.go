package dto

import (
	"time"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
)

// CredentialResponse represents a stored credential in API responses. It never carries
// the key or its ciphertext.
type CredentialResponse struct {
	ID          string     `json:"id"`
	Category    string     `json:"category"`
	ProviderID  int64      `json:"provider_id"`
	Label       string     `json:"label"`
	Last4       string     `json:"last4"`
	Environment string     `json:"environment"`
	Status      string     `json:"status"`
	ErrorCount  int        `json:"error_count"`
	Version     int64      `json:"version"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ListCredentialsResponse represents a paginated list of credentials in API responses.
type ListCredentialsResponse struct {
	Data []CredentialResponse `json:"data"`
}

// MapSummaryToResponse converts a credential summary to an API response.
func MapSummaryToResponse(summary *credentialDomain.Summary) CredentialResponse {
	return CredentialResponse{
		ID:          summary.ID.String(),
		Category:    string(summary.Category),
		ProviderID:  summary.ProviderID,
		Label:       summary.Label,
		Last4:       summary.Last4,
		Environment: string(summary.Environment),
		Status:      string(summary.Status),
		ErrorCount:  summary.ErrorCount,
		Version:     summary.Version,
		LastUsedAt:  summary.LastUsedAt,
		CreatedAt:   summary.CreatedAt,
		UpdatedAt:   summary.UpdatedAt,
	}
}

// MapSummariesToListResponse converts credential summaries to a list response.
func MapSummariesToListResponse(summaries []*credentialDomain.Summary) ListCredentialsResponse {
	data := make([]CredentialResponse, 0, len(summaries))
	for _, summary := range summaries {
		data = append(data, MapSummaryToResponse(summary))
	}
	return ListCredentialsResponse{Data: data}
}
