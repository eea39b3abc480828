package domain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Prefixes of registry key entries.
const (
	RawKeyPrefix     = "base64:"
	WrappedKeyPrefix = "kms:"
)

// RegistryFile is the on-disk shape of the key registry:
//
//	{"active_kid": "k2", "legacy_kid": "k1", "keys": {"k1": "base64:...", "k2": "kms:..."}}
type RegistryFile struct {
	ActiveKID string            `json:"active_kid"`
	LegacyKID string            `json:"legacy_kid,omitempty"`
	Keys      map[string]string `json:"keys"`
}

// LoadRegistry reads and validates the registry at path. keeper may be nil when the
// file holds no "kms:" entries.
func LoadRegistry(ctx context.Context, path string, keeper KMSKeeper) (*MasterKeyRegistry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryFileNotFound, err)
	}
	return ParseRegistry(ctx, data, keeper)
}

// ParseRegistry decodes registry JSON and unwraps every entry.
func ParseRegistry(ctx context.Context, data []byte, keeper KMSKeeper) (*MasterKeyRegistry, error) {
	var rf RegistryFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryMalformed, err)
	}
	if rf.ActiveKID == "" || len(rf.Keys) == 0 {
		return nil, fmt.Errorf("%w: active_kid and keys are required", ErrRegistryMalformed)
	}

	keys := make([]*MasterKey, 0, len(rf.Keys))
	defer func() {
		for _, mk := range keys {
			Zero(mk.Key)
		}
	}()

	for id, encoded := range rf.Keys {
		key, err := decodeKeyEntry(ctx, id, encoded, keeper)
		if err != nil {
			return nil, err
		}
		keys = append(keys, &MasterKey{ID: id, Key: key})
	}

	return NewMasterKeyRegistry(rf.ActiveKID, rf.LegacyKID, keys)
}

func decodeKeyEntry(ctx context.Context, id, encoded string, keeper KMSKeeper) ([]byte, error) {
	switch {
	case strings.HasPrefix(encoded, RawKeyPrefix):
		key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(encoded, RawKeyPrefix))
		if err != nil {
			return nil, fmt.Errorf("%w: key %s: %v", ErrInvalidKeyEncoding, id, err)
		}
		return key, nil
	case strings.HasPrefix(encoded, WrappedKeyPrefix):
		if keeper == nil {
			return nil, fmt.Errorf("%w: key %s", ErrKMSKeeperRequired, id)
		}
		wrapped, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(encoded, WrappedKeyPrefix))
		if err != nil {
			return nil, fmt.Errorf("%w: key %s: %v", ErrInvalidKeyEncoding, id, err)
		}
		key, err := keeper.Decrypt(ctx, wrapped)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to unwrap key %s: %v", ErrRegistry, id, err)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("%w: key %s", ErrInvalidKeyEncoding, id)
	}
}

// EncodeRawKey renders key as a "base64:" registry entry.
func EncodeRawKey(key []byte) string {
	return RawKeyPrefix + base64.StdEncoding.EncodeToString(key)
}

// EncodeWrappedKey renders KMS ciphertext as a "kms:" registry entry.
func EncodeWrappedKey(ciphertext []byte) string {
	return WrappedKeyPrefix + base64.StdEncoding.EncodeToString(ciphertext)
}

// ReadRegistryFile reads the raw registry document without unwrapping keys.
func ReadRegistryFile(path string) (*RegistryFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryFileNotFound, err)
	}
	var rf RegistryFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryMalformed, err)
	}
	if rf.Keys == nil {
		rf.Keys = map[string]string{}
	}
	return &rf, nil
}

// WriteRegistryFile writes rf to path with mode 0600, replacing any existing file
// atomically through a temporary file in the same directory.
func WriteRegistryFile(path string, rf *RegistryFile) error {
	data, err := json.MarshalIndent(rf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".keys-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp registry file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to chmod registry file: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close registry file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to install registry file: %w", err)
	}
	return nil
}
