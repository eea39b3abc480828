package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/tradejournal/internal/crypto/domain"
	cryptoService "github.com/allisson/tradejournal/internal/crypto/service"
)

// RunRotateMasterKey adds a freshly generated key to the registry at path and makes it
// active. Existing keys stay in the file so credentials written under them remain
// readable until rewrap-credentials has moved them to the new key.
func RunRotateMasterKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	path, keyID, kmsKeyURI string,
) error {
	if path == "" {
		return fmt.Errorf("registry path is required (--path or KEY_REGISTRY_PATH)")
	}

	rf, err := cryptoDomain.ReadRegistryFile(path)
	if err != nil {
		return err
	}
	if len(rf.Keys) == 0 {
		return fmt.Errorf("registry %s holds no keys, use create-master-key", path)
	}

	if keyID == "" {
		keyID = defaultKeyID()
	}
	if _, exists := rf.Keys[keyID]; exists {
		return fmt.Errorf("key id %q already exists in the registry", keyID)
	}

	entry, err := newKeyEntry(ctx, kmsService, keyID, kmsKeyURI)
	if err != nil {
		return err
	}

	previous := rf.ActiveKID
	rf.Keys[keyID] = entry
	rf.ActiveKID = keyID

	if err := cryptoDomain.WriteRegistryFile(path, rf); err != nil {
		return err
	}

	logger.Info("master key rotated",
		slog.String("path", path),
		slog.String("active_key_id", keyID),
		slog.String("previous_key_id", previous),
	)

	_, _ = fmt.Fprintln(writer, "# Master Key Rotation")
	_, _ = fmt.Fprintf(writer, "# Active key: %s (previous: %s)\n", keyID, previous)
	_, _ = fmt.Fprintf(writer, "# Keys in registry: %d\n", len(rf.Keys))
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "# Rotation Workflow:")
	_, _ = fmt.Fprintln(writer, "# 1. Restart the application so it loads the new active key")
	_, _ = fmt.Fprintln(writer, "# 2. Re-encrypt stored credentials: app rewrap-credentials")
	_, _ = fmt.Fprintf(writer, "# 3. After the rewrap reports no failures, remove %q from the registry\n", previous)

	return nil
}
