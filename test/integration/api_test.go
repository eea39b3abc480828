// Package integration provides end-to-end integration tests for the provider gateway API.
// Tests run the full container against both PostgreSQL and MySQL databases.
package integration

import (
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/tradejournal/internal/app"
	"github.com/allisson/tradejournal/internal/config"
	credentialDTO "github.com/allisson/tradejournal/internal/credential/http/dto"
	cryptoDomain "github.com/allisson/tradejournal/internal/crypto/domain"
	operationDTO "github.com/allisson/tradejournal/internal/operation/http/dto"
	providerDomain "github.com/allisson/tradejournal/internal/provider/domain"
	providerDTO "github.com/allisson/tradejournal/internal/provider/http/dto"
	"github.com/allisson/tradejournal/internal/testutil"
)

const (
	testUserID   = int64(1001)
	testAPIKey   = "news-api-key-0123456789"
	rotatedKey   = "news-api-key-rotated-9876"
	testJWTSecret = "integration-test-secret"
)

// integrationTestContext holds all dependencies and state for integration testing.
type integrationTestContext struct {
	container  *app.Container
	db         *sql.DB
	server     *httptest.Server
	upstream   *httptest.Server
	token      string
	providerID int64
	dbDriver   string
	// upstreamHits counts requests that reached the fake provider.
	upstreamHits atomic.Int32
	// lastAPIKey is the X-Api-Key header of the most recent upstream request.
	lastAPIKey atomic.Value
}

// makeRequest performs an HTTP request and returns the response and body.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body interface{},
	useAuth bool,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if useAuth {
		req.Header.Set("Authorization", "Bearer "+ctx.token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	//nolint:gosec // controlled test environment with localhost URLs
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	if closeErr := resp.Body.Close(); closeErr != nil {
		t.Logf("Warning: failed to close response body: %v", closeErr)
	}

	return resp, respBody
}

// newUpstream starts a fake news provider that only answers requests carrying an API key.
func (ctx *integrationTestContext) newUpstream() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx.upstreamHits.Add(1)
		key := r.Header.Get("X-Api-Key")
		ctx.lastAPIKey.Store(key)

		w.Header().Set("Content-Type", "application/json")
		if key == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error"}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"status":"ok","country":%q,"articles":[{"title":"Markets open higher"}]}`,
			r.URL.Query().Get("country"))
	}))
}

// writeKeyRegistry writes a single raw-key registry file and returns its path.
func writeKeyRegistry(t *testing.T) string {
	t.Helper()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err, "failed to generate master key")

	path := filepath.Join(t.TempDir(), "keys.json")
	err = cryptoDomain.WriteRegistryFile(path, &cryptoDomain.RegistryFile{
		ActiveKID: "k1",
		Keys:      map[string]string{"k1": cryptoDomain.EncodeRawKey(key)},
	})
	require.NoError(t, err, "failed to write key registry")
	return path
}

// seedCatalog imports a news provider whose single operation targets the fake upstream.
func seedCatalog(t *testing.T, ctx *integrationTestContext) {
	t.Helper()

	manifest := fmt.Sprintf(`
providers:
  - name: newsapi
    category: news
    base_url: %s
    operations:
      news.top:
        method: GET
        path: /v2/top-headlines?country={{COUNTRY}}
        headers:
          - name: X-Api-Key
            value: "{{API_KEY}}"
        required_fields: [COUNTRY]
        expected_status: 200
        ok_json_path: status
        ok_json_expected: ok
`, ctx.upstream.URL)

	providers, err := providerDomain.ParseManifest([]byte(manifest))
	require.NoError(t, err, "failed to parse catalog manifest")

	providerUseCase, err := ctx.container.ProviderUseCase()
	require.NoError(t, err, "failed to get provider use case")

	result, err := providerUseCase.Import(context.Background(), providers)
	require.NoError(t, err, "failed to import catalog")
	require.Equal(t, 1, result.Created)
	ctx.providerID = providers[0].ID
}

// setupIntegrationTest initializes all components for integration testing.
func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	var db *sql.DB
	var dsn string
	if dbDriver == "postgres" {
		testutil.SkipIfNoPostgres(t)
		db = testutil.SetupPostgresDB(t)
		dsn = testutil.GetPostgresTestDSN()
	} else {
		testutil.SkipIfNoMySQL(t)
		db = testutil.SetupMySQLDB(t)
		dsn = testutil.GetMySQLTestDSN()
	}

	cfg := &config.Config{
		DBDriver:                  dbDriver,
		DBConnectionString:        dsn,
		DBMaxOpenConnections:      10,
		DBMaxIdleConnections:      5,
		DBConnMaxLifetime:         time.Hour,
		ServerHost:                "localhost",
		ServerPort:                8080,
		LogLevel:                  "error",
		KeyRegistryPath:           writeKeyRegistry(t),
		JWTSecret:                 testJWTSecret,
		JWTIssuer:                 "tradejournal",
		AuthTokenExpiration:       time.Hour,
		OperationTimeout:          5 * time.Second,
		OperationMaxResponseBytes: 1 << 20,
		CredentialErrorThreshold:  3,
	}

	ctx := &integrationTestContext{
		container: app.NewContainer(cfg),
		db:        db,
		dbDriver:  dbDriver,
	}
	ctx.lastAPIKey.Store("")
	ctx.upstream = ctx.newUpstream()

	tokenService, err := ctx.container.TokenService()
	require.NoError(t, err, "failed to get token service")
	ctx.token, _, err = tokenService.Issue(testUserID, time.Hour)
	require.NoError(t, err, "failed to issue token")

	seedCatalog(t, ctx)

	httpSrv, err := ctx.container.HTTPServer()
	require.NoError(t, err, "failed to get HTTP server")

	handler := httpSrv.GetHandler()
	require.NotNil(t, handler, "handler should not be nil after SetupRouter")
	ctx.server = httptest.NewServer(handler)

	t.Logf("Integration test setup complete for %s (provider_id=%d)", dbDriver, ctx.providerID)
	return ctx
}

// teardownIntegrationTest cleans up all resources.
func teardownIntegrationTest(t *testing.T, ctx *integrationTestContext) {
	t.Helper()

	if ctx.server != nil {
		ctx.server.Close()
	}
	if ctx.upstream != nil {
		ctx.upstream.Close()
	}

	if ctx.container != nil {
		if err := ctx.container.Shutdown(context.Background()); err != nil {
			t.Logf("Warning: container shutdown error: %v", err)
		}
	}

	if ctx.db != nil {
		testutil.TeardownDB(t, ctx.db)
	}

	t.Logf("Integration test teardown complete for %s", ctx.dbDriver)
}

func decodeOperationError(t *testing.T, body []byte) operationDTO.OperationErrorResponse {
	t.Helper()
	var resp operationDTO.OperationErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

// TestIntegration_Health_BasicChecks validates the health and readiness endpoints.
func TestIntegration_Health_BasicChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testCases := []struct {
		name     string
		dbDriver string
	}{
		{"PostgreSQL", "postgres"},
		{"MySQL", "mysql"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			t.Run("01_HealthCheck", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/health", nil, false)
				assert.Equal(t, http.StatusOK, resp.StatusCode)

				var response map[string]string
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "healthy", response["status"])
			})

			t.Run("02_ReadinessCheck", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/ready", nil, false)
				assert.Equal(t, http.StatusOK, resp.StatusCode)

				var response map[string]any
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "ready", response["status"])
			})

			t.Run("03_ProtectedRouteRequiresToken", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/providers", nil, false)
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})
		})
	}
}

// TestIntegration_Gateway_CompleteFlow walks a credential through its lifecycle and
// executes a catalog operation against a fake provider at each stage.
func TestIntegration_Gateway_CompleteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testCases := []struct {
		name     string
		dbDriver string
	}{
		{"PostgreSQL", "postgres"},
		{"MySQL", "mysql"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			executePath := fmt.Sprintf("/v1/providers/%d/operations/news.top", ctx.providerID)
			credentialsPath := "/v1/credentials/news"
			var credentialID string

			t.Run("01_ListProviders", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/providers?category=news", nil, true)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var response providerDTO.ListProvidersResponse
				require.NoError(t, json.Unmarshal(body, &response))
				require.Len(t, response.Data, 1)
				assert.Equal(t, "newsapi", response.Data[0].Name)
				assert.Equal(t, []string{"news.top"}, response.Data[0].Operations)
				assert.True(t, response.Data[0].CatalogValid)
			})

			t.Run("02_ExecuteWithoutCredential", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, executePath, map[string]any{
					"params": map[string]string{"COUNTRY": "us"},
				}, true)
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
				assert.Equal(t, operationDTO.CredentialUnavailable, decodeOperationError(t, body).Error)
				assert.Zero(t, ctx.upstreamHits.Load(), "no request may leave without a credential")
			})

			t.Run("03_PutCredential", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, credentialsPath, map[string]any{
					"provider_id": ctx.providerID,
					"api_key":     testAPIKey,
					"label":       "primary",
				}, true)
				require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

				var response credentialDTO.CredentialResponse
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "6789", response.Last4)
				assert.Equal(t, "live", response.Environment)
				assert.Equal(t, "active", response.Status)
				assert.Equal(t, int64(1), response.Version)
				assert.NotContains(t, string(body), testAPIKey)
				credentialID = response.ID
			})

			t.Run("04_CiphertextAtRest", func(t *testing.T) {
				var stored string
				err := ctx.db.QueryRow("SELECT api_key_ciphertext FROM news_credentials").Scan(&stored)
				require.NoError(t, err)
				assert.True(t, strings.HasPrefix(stored, "k1:"), "stored value should carry the key id")
				assert.NotContains(t, stored, testAPIKey)
			})

			t.Run("05_ExecuteOperation", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, executePath, map[string]any{
					"params": map[string]string{"COUNTRY": "us"},
				}, true)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var response operationDTO.ExecuteOperationResponse
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, ctx.providerID, response.ProviderID)
				assert.Equal(t, "news.top", response.Operation)
				assert.Equal(t, http.StatusOK, response.Status)
				assert.JSONEq(t,
					`{"status":"ok","country":"us","articles":[{"title":"Markets open higher"}]}`,
					string(response.Data),
				)
				assert.Equal(t, testAPIKey, ctx.lastAPIKey.Load())
			})

			t.Run("06_MissingRequiredField", func(t *testing.T) {
				hits := ctx.upstreamHits.Load()
				resp, body := ctx.makeRequest(t, http.MethodPost, executePath, map[string]any{}, true)
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

				errResp := decodeOperationError(t, body)
				assert.Equal(t, "missing_field", errResp.Error)
				assert.Equal(t, []string{"COUNTRY"}, errResp.Fields)
				assert.Equal(t, hits, ctx.upstreamHits.Load())
			})

			t.Run("07_UnknownOperation", func(t *testing.T) {
				path := fmt.Sprintf("/v1/providers/%d/operations/news.search", ctx.providerID)
				resp, body := ctx.makeRequest(t, http.MethodPost, path, map[string]any{}, true)
				assert.Equal(t, http.StatusNotFound, resp.StatusCode)
				assert.Equal(t, "operation_not_found", decodeOperationError(t, body).Error)
			})

			t.Run("08_ReplaceCredential", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, credentialsPath, map[string]any{
					"provider_id": ctx.providerID,
					"api_key":     rotatedKey,
				}, true)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var response credentialDTO.CredentialResponse
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, credentialID, response.ID)
				assert.Equal(t, int64(2), response.Version)
				assert.Equal(t, 1, testutil.CountCredentials(t, ctx.db, "news"))

				resp, _ = ctx.makeRequest(t, http.MethodPost, executePath, map[string]any{
					"params": map[string]string{"COUNTRY": "gb"},
				}, true)
				require.Equal(t, http.StatusOK, resp.StatusCode)
				assert.Equal(t, rotatedKey, ctx.lastAPIKey.Load())
			})

			t.Run("09_ListCredentials", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, credentialsPath, nil, true)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var response credentialDTO.ListCredentialsResponse
				require.NoError(t, json.Unmarshal(body, &response))
				require.Len(t, response.Data, 1)
				assert.Equal(t, credentialID, response.Data[0].ID)
				assert.NotContains(t, string(body), rotatedKey)
			})

			t.Run("10_RevokeCredential", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodPost, credentialsPath+"/"+credentialID+"/revoke", nil, true)
				assert.Equal(t, http.StatusNoContent, resp.StatusCode)

				resp, body := ctx.makeRequest(t, http.MethodPost, executePath, map[string]any{
					"params": map[string]string{"COUNTRY": "us"},
				}, true)
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
				assert.Equal(t, operationDTO.CredentialUnavailable, decodeOperationError(t, body).Error)
			})

			t.Run("11_DeleteCredential", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodDelete, credentialsPath+"/"+credentialID, nil, true)
				assert.Equal(t, http.StatusNoContent, resp.StatusCode)
				assert.Equal(t, 0, testutil.CountCredentials(t, ctx.db, "news"))

				resp, _ = ctx.makeRequest(t, http.MethodDelete, credentialsPath+"/"+credentialID, nil, true)
				assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			})
		})
	}
}
