package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	credentialUseCase "github.com/allisson/tradejournal/internal/credential/usecase"
	apperrors "github.com/allisson/tradejournal/internal/errors"
	operationDomain "github.com/allisson/tradejournal/internal/operation/domain"
	operationService "github.com/allisson/tradejournal/internal/operation/service"
	providerDomain "github.com/allisson/tradejournal/internal/provider/domain"
	providerUseCase "github.com/allisson/tradejournal/internal/provider/usecase"
)

// operationUseCase implements OperationUseCase.
type operationUseCase struct {
	providers   providerUseCase.ProviderUseCase
	credentials credentialUseCase.CredentialUseCase
	caller      operationService.Caller
	logger      *slog.Logger
}

// Execute follows a fixed order: descriptor, required fields, credential, render, call,
// status check, response check. No network call happens before the credential resolves.
func (o *operationUseCase) Execute(
	ctx context.Context,
	input *operationDomain.ExecuteInput,
) (*operationDomain.Result, error) {
	provider, descriptor, err := o.lookup(ctx, input.ProviderID, input.Operation)
	if err != nil {
		return nil, o.scope(err, input)
	}

	if missing := missingFields(descriptor, input.Params); len(missing) > 0 {
		return nil, o.scope(&operationDomain.Error{Kind: operationDomain.KindMissingField, Fields: missing}, input)
	}

	cred, err := o.credentials.GetDecrypted(ctx, input.UserID, provider.Category, provider.ID, input.Environment)
	switch {
	case credentialDomain.IsNotFound(err):
		return nil, o.scope(&operationDomain.Error{Kind: operationDomain.KindCredentialMissing}, input)
	case credentialDomain.IsUnreadable(err):
		return nil, o.scope(&operationDomain.Error{Kind: operationDomain.KindCredentialUnreadable, Cause: err}, input)
	case err != nil:
		return nil, err
	}

	req, err := operationService.Render(descriptor, provider.BaseURL, bindings(input.Params, cred.Secret))
	if err != nil {
		return nil, o.scope(err, input)
	}

	resp, err := o.caller.Do(ctx, req)
	if err != nil {
		return nil, o.scope(err, input)
	}

	if resp.Status != descriptor.ExpectedStatus {
		if resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden {
			o.recordRejection(ctx, input, cred)
		}
		return nil, o.scope(&operationDomain.Error{
			Kind:           operationDomain.KindUnexpectedStatus,
			Status:         resp.Status,
			ExpectedStatus: descriptor.ExpectedStatus,
			BodySnippet:    operationDomain.Snippet(resp.Body, cred.Secret),
		}, input)
	}

	if resp.Truncated {
		return nil, o.scope(&operationDomain.Error{
			Kind:   operationDomain.KindUnexpectedResponseShape,
			Status: resp.Status,
			Detail: "response body exceeds the size limit",
		}, input)
	}

	if descriptor.HasResponseCheck() {
		if detail := checkResponse(descriptor, resp.Body); detail != "" {
			return nil, o.scope(&operationDomain.Error{
				Kind:        operationDomain.KindUnexpectedResponseShape,
				Status:      resp.Status,
				Detail:      detail,
				BodySnippet: operationDomain.Snippet(resp.Body, cred.Secret),
			}, input)
		}
	}

	if err := o.credentials.MarkUsed(ctx, input.UserID, provider.Category, cred.ID); err != nil {
		o.logger.Warn("failed to mark credential used",
			slog.String("credential_id", cred.ID.String()),
			slog.Any("error", err),
		)
	}

	return &operationDomain.Result{
		ProviderID:  provider.ID,
		Operation:   descriptor.Name,
		Status:      resp.Status,
		ContentType: resp.ContentType,
		Body:        resp.Body,
		JSON:        len(resp.Body) > 0 && json.Valid(resp.Body),
		Duration:    resp.Duration,
	}, nil
}

func (o *operationUseCase) lookup(
	ctx context.Context,
	providerID int64,
	operation string,
) (*providerDomain.Provider, *providerDomain.Descriptor, error) {
	provider, err := o.providers.Get(ctx, providerID)
	switch {
	case apperrors.Is(err, providerDomain.ErrInvalidCatalog):
		return nil, nil, &operationDomain.Error{
			Kind:   operationDomain.KindTemplateError,
			Detail: "provider catalog is invalid",
			Cause:  err,
		}
	case apperrors.Is(err, apperrors.ErrNotFound):
		return nil, nil, operationDomain.NewError(operationDomain.KindOperationNotFound, "unknown provider")
	case err != nil:
		return nil, nil, err
	}

	descriptor, ok := provider.Catalog.Lookup(operation)
	if !ok {
		return nil, nil, operationDomain.NewError(operationDomain.KindOperationNotFound, "unknown operation")
	}
	return provider, descriptor, nil
}

// recordRejection counts a provider rejection against the credential. Failures here
// must not mask the operation error.
func (o *operationUseCase) recordRejection(
	ctx context.Context,
	input *operationDomain.ExecuteInput,
	cred *credentialDomain.DecryptedCredential,
) {
	status, err := o.credentials.RecordUseError(ctx, input.UserID, cred.Category, cred.ID)
	if err != nil {
		o.logger.Warn("failed to record credential rejection",
			slog.String("credential_id", cred.ID.String()),
			slog.Any("error", err),
		)
		return
	}
	if status == credentialDomain.StatusError {
		o.logger.Warn("credential quarantined after repeated rejections",
			slog.Int64("user_id", input.UserID),
			slog.Int64("provider_id", input.ProviderID),
			slog.String("credential_id", cred.ID.String()),
		)
	}
}

// scope stamps the provider and operation onto an operation error.
func (o *operationUseCase) scope(err error, input *operationDomain.ExecuteInput) error {
	if opErr, ok := operationDomain.AsError(err); ok {
		opErr.ProviderID = input.ProviderID
		opErr.Operation = input.Operation
	}
	return err
}

// missingFields returns the required fields absent or empty in params, in catalog order.
func missingFields(d *providerDomain.Descriptor, params map[string]string) []string {
	var missing []string
	for _, name := range d.RequiredFields {
		if params[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// bindings is params plus API_KEY. The credential always wins over a param of the same name.
func bindings(params map[string]string, apiKey string) map[string]string {
	out := make(map[string]string, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	out[providerDomain.APIKeyToken] = apiKey
	return out
}

// checkResponse returns a description of the mismatch, or "" when the body passes.
func checkResponse(d *providerDomain.Descriptor, body []byte) string {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "response is not JSON"
	}

	value, ok := d.OKPath.Lookup(doc)
	if !ok {
		return "response has no value at " + d.OKJSONPath
	}

	if len(d.OKJSONExpected) == 0 {
		if value == nil {
			return "response value at " + d.OKJSONPath + " is null"
		}
		return ""
	}

	var expected any
	if err := json.Unmarshal(d.OKJSONExpected, &expected); err != nil {
		return "expected value is not JSON"
	}
	if !reflect.DeepEqual(value, expected) {
		return "response value at " + d.OKJSONPath + " does not match"
	}
	return ""
}

// NewOperationUseCase creates a new OperationUseCase.
func NewOperationUseCase(
	providers providerUseCase.ProviderUseCase,
	credentials credentialUseCase.CredentialUseCase,
	caller operationService.Caller,
	logger *slog.Logger,
) OperationUseCase {
	return &operationUseCase{
		providers:   providers,
		credentials: credentials,
		caller:      caller,
		logger:      logger,
	}
}
