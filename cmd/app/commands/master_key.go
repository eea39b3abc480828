package commands

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	cryptoDomain "github.com/allisson/tradejournal/internal/crypto/domain"
	cryptoService "github.com/allisson/tradejournal/internal/crypto/service"
)

// RunCreateMasterKey generates a 32-byte master key and writes a new key registry file
// at path with the key marked active. If keyID is empty a default id in the format
// "master-key-YYYY-MM-DD" is used.
//
// When kmsKeyURI is set the key is wrapped by the KMS keeper and stored as "kms:<ciphertext>";
// otherwise it is stored raw as "base64:<key>" and the file itself must be protected.
// An existing registry is only replaced when force is true.
func RunCreateMasterKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	path, keyID, kmsKeyURI string,
	force bool,
) error {
	if path == "" {
		return fmt.Errorf("registry path is required (--path or KEY_REGISTRY_PATH)")
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("registry file %s already exists, use rotate-master-key or --force", path)
	}

	if keyID == "" {
		keyID = defaultKeyID()
	}

	entry, err := newKeyEntry(ctx, kmsService, keyID, kmsKeyURI)
	if err != nil {
		return err
	}

	rf := &cryptoDomain.RegistryFile{
		ActiveKID: keyID,
		Keys:      map[string]string{keyID: entry},
	}
	if err := cryptoDomain.WriteRegistryFile(path, rf); err != nil {
		return err
	}

	logger.Info("key registry created",
		slog.String("path", path),
		slog.String("active_key_id", keyID),
		slog.Bool("kms", kmsKeyURI != ""),
	)

	_, _ = fmt.Fprintln(writer, "# Key registry created")
	_, _ = fmt.Fprintf(writer, "# Active key: %s\n", keyID)
	if kmsKeyURI == "" {
		_, _ = fmt.Fprintln(writer, "# Storage: raw key, keep the file readable only by the service user")
	} else {
		_, _ = fmt.Fprintln(writer, "# Storage: KMS wrapped")
	}
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "KEY_REGISTRY_PATH=\"%s\"\n", path)
	if kmsKeyURI != "" {
		_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	}

	return nil
}

func defaultKeyID() string {
	return fmt.Sprintf("master-key-%s", time.Now().UTC().Format("2006-01-02"))
}

// newKeyEntry generates a master key and returns its registry encoding. The key is
// checked against the registry rules before it is encoded and zeroed afterwards.
func newKeyEntry(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	keyID, kmsKeyURI string,
) (string, error) {
	masterKey := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(masterKey); err != nil {
		return "", fmt.Errorf("failed to generate master key: %w", err)
	}
	defer cryptoDomain.Zero(masterKey)

	probe, err := cryptoDomain.NewMasterKeyRegistry(
		keyID,
		"",
		[]*cryptoDomain.MasterKey{{ID: keyID, Key: masterKey}},
	)
	if err != nil {
		return "", err
	}
	probe.Close()

	if kmsKeyURI == "" {
		return cryptoDomain.EncodeRawKey(masterKey), nil
	}

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return "", fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	ciphertext, err := keeper.Encrypt(ctx, masterKey)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt master key with KMS: %w", err)
	}
	return cryptoDomain.EncodeWrappedKey(ciphertext), nil
}
