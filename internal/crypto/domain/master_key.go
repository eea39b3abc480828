// Package domain defines the key registry and the encrypted blob format used to
// protect stored provider credentials.
package domain

import (
	"fmt"
	"regexp"
	"sort"
)

// KeySize is the only accepted master key length (AES-256).
const KeySize = 32

var keyIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// MasterKey is one key-encrypting key identified by ID.
type MasterKey struct {
	ID  string
	Key []byte
}

// MasterKeyRegistry holds every master key known to the process with one marked active.
//
// The registry is built once at startup and never mutated afterwards, so it is safe to
// share between goroutines without locking. New blobs are always written under the
// active key; older key ids stay in the registry until every blob has been rewrapped.
type MasterKeyRegistry struct {
	activeID string
	legacyID string
	keys     map[string]*MasterKey
}

// NewMasterKeyRegistry validates the keys and builds a registry. The key bytes are
// copied, so callers may zero their own slices afterwards.
//
// legacyID names the key used for blobs written before key ids were embedded. It may
// be empty when the registry holds exactly one key, which then serves legacy blobs.
func NewMasterKeyRegistry(activeID, legacyID string, keys []*MasterKey) (*MasterKeyRegistry, error) {
	r := &MasterKeyRegistry{
		activeID: activeID,
		legacyID: legacyID,
		keys:     make(map[string]*MasterKey, len(keys)),
	}

	for _, mk := range keys {
		if !keyIDPattern.MatchString(mk.ID) {
			r.Close()
			return nil, fmt.Errorf("%w: %q", ErrInvalidKeyID, mk.ID)
		}
		if len(mk.Key) != KeySize {
			r.Close()
			return nil, fmt.Errorf(
				"%w: master key %s must be %d bytes, got %d",
				ErrInvalidKeySize,
				mk.ID,
				KeySize,
				len(mk.Key),
			)
		}
		key := make([]byte, KeySize)
		copy(key, mk.Key)
		r.keys[mk.ID] = &MasterKey{ID: mk.ID, Key: key}
	}

	if _, ok := r.keys[activeID]; !ok {
		r.Close()
		return nil, fmt.Errorf("%w: %q", ErrActiveKeyNotFound, activeID)
	}
	if legacyID != "" {
		if _, ok := r.keys[legacyID]; !ok {
			r.Close()
			return nil, fmt.Errorf("%w: %q", ErrLegacyKeyNotFound, legacyID)
		}
	}

	return r, nil
}

// ActiveKeyID returns the id new blobs are encrypted under.
func (r *MasterKeyRegistry) ActiveKeyID() string {
	return r.activeID
}

// Active returns the active master key.
func (r *MasterKeyRegistry) Active() *MasterKey {
	return r.keys[r.activeID]
}

// Get retrieves a master key by id.
func (r *MasterKeyRegistry) Get(id string) (*MasterKey, bool) {
	mk, ok := r.keys[id]
	return mk, ok
}

// LegacyKey returns the key for blobs without an embedded key id: the configured
// legacy key, or the only key when exactly one exists. Any other layout is ambiguous
// and yields false.
func (r *MasterKeyRegistry) LegacyKey() (*MasterKey, bool) {
	if r.legacyID != "" {
		return r.Get(r.legacyID)
	}
	if len(r.keys) == 1 {
		return r.Get(r.activeID)
	}
	return nil, false
}

// KeyIDs returns the sorted list of key ids.
func (r *MasterKeyRegistry) KeyIDs() []string {
	ids := make([]string, 0, len(r.keys))
	for id := range r.keys {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close zeroes every key. The registry is unusable afterwards.
func (r *MasterKeyRegistry) Close() {
	for id, mk := range r.keys {
		Zero(mk.Key)
		delete(r.keys, id)
	}
	r.activeID = ""
	r.legacyID = ""
}
