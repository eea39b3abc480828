// Package domain defines the operation engine's inputs, results and error taxonomy.
package domain

import (
	"strings"
	"time"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
)

// MaxSnippetBytes bounds the response excerpt kept for diagnostics.
const MaxSnippetBytes = 512

const redacted = "[REDACTED]"

// ExecuteInput identifies one operation call.
type ExecuteInput struct {
	UserID      int64
	ProviderID  int64
	Operation   string
	Params      map[string]string `json:"-"`
	Environment credentialDomain.Environment
}

// Result is a successful provider response.
type Result struct {
	ProviderID  int64
	Operation   string
	Status      int
	ContentType string
	Body        []byte
	// JSON reports whether Body is a valid JSON document.
	JSON     bool
	Duration time.Duration
}

// Snippet returns up to MaxSnippetBytes of body with every secret replaced. Secrets are
// replaced before truncating so a partial key never survives the cut.
func Snippet(body []byte, secrets ...string) string {
	s := string(body)
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, redacted)
	}
	if len(s) > MaxSnippetBytes {
		s = s[:MaxSnippetBytes]
	}
	return strings.ToValidUTF8(s, "")
}
