package commands

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	authService "github.com/allisson/tradejournal/internal/auth/service"
)

// RunIssueToken prints a signed bearer token for userID. Intended for support and
// local testing; production tokens come from the identity provider that shares the
// JWT secret.
func RunIssueToken(
	tokenService authService.TokenService,
	logger *slog.Logger,
	writer io.Writer,
	userID int64,
	ttl time.Duration,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if userID <= 0 {
		return fmt.Errorf("user-id must be greater than 0")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be greater than 0")
	}

	token, expiresAt, err := tokenService.Issue(userID, ttl)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	logger.Info("token issued",
		slog.Int64("user_id", userID),
		slog.Time("expires_at", expiresAt),
	)

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"token":      token,
			"user_id":    userID,
			"expires_at": expiresAt.UTC().Format(time.RFC3339),
		})
	}

	_, _ = fmt.Fprintf(writer, "# Expires at %s\n", expiresAt.UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(writer, "Authorization: Bearer %s\n", token)
	return nil
}
