package dto

import (
	"encoding/json"

	operationDomain "github.com/allisson/tradejournal/internal/operation/domain"
)

// ExecuteOperationResponse is a successful operation call. Data holds the provider's
// JSON body as-is, or the body as a JSON string when the provider did not return JSON.
type ExecuteOperationResponse struct {
	ProviderID int64           `json:"provider_id"`
	Operation  string          `json:"operation"`
	Status     int             `json:"status"`
	DurationMS int64           `json:"duration_ms"`
	Data       json.RawMessage `json:"data"`
}

// MapResultToResponse converts an operation result to an API response.
func MapResultToResponse(result *operationDomain.Result) ExecuteOperationResponse {
	resp := ExecuteOperationResponse{
		ProviderID: result.ProviderID,
		Operation:  result.Operation,
		Status:     result.Status,
		DurationMS: result.Duration.Milliseconds(),
	}

	switch {
	case result.JSON:
		resp.Data = json.RawMessage(result.Body)
	case len(result.Body) == 0:
		resp.Data = json.RawMessage("null")
	default:
		text, _ := json.Marshal(string(result.Body))
		resp.Data = text
	}
	return resp
}

// OperationErrorResponse is the body of a failed operation call. Error is the failure
// kind, except that both credential kinds are reported as "credential_unavailable".
type OperationErrorResponse struct {
	Error          string   `json:"error"`
	Message        string   `json:"message"`
	RequestID      string   `json:"request_id,omitempty"`
	Fields         []string `json:"fields,omitempty"`
	UpstreamStatus int      `json:"upstream_status,omitempty"`
	ExpectedStatus int      `json:"expected_status,omitempty"`
}

// CredentialUnavailable is the public code for a missing or unreadable credential.
const CredentialUnavailable = "credential_unavailable"

// MapErrorToResponse converts an operation error to an API response. Body snippets and
// causes stay in the logs.
func MapErrorToResponse(opErr *operationDomain.Error, requestID string) OperationErrorResponse {
	code := string(opErr.Kind)
	if opErr.Kind == operationDomain.KindCredentialMissing || opErr.Kind == operationDomain.KindCredentialUnreadable {
		code = CredentialUnavailable
	}

	resp := OperationErrorResponse{
		Error:     code,
		Message:   opErr.Message(),
		RequestID: requestID,
	}
	switch opErr.Kind {
	case operationDomain.KindMissingField, operationDomain.KindInvalidField:
		resp.Fields = opErr.Fields
	case operationDomain.KindUnexpectedStatus:
		resp.UpstreamStatus = opErr.Status
		resp.ExpectedStatus = opErr.ExpectedStatus
	}
	return resp
}
