// Package domain defines the stored provider credential and its lifecycle.
//
// A credential is one user's API key for one provider, in one environment. Keys are
// kept encrypted at rest; only the last four characters and a SHA-256 fingerprint of
// the plaintext are stored in the clear.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/tradejournal/internal/crypto/domain"
)

// Category groups providers. Each category has its own credential table.
type Category string

// Provider categories.
const (
	CategoryAI    Category = "ai"
	CategoryData  Category = "data"
	CategoryNews  Category = "news"
	CategoryTrade Category = "trade"
)

// Categories lists every valid category.
var Categories = []Category{CategoryAI, CategoryData, CategoryNews, CategoryTrade}

// ParseCategory validates s as a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryAI, CategoryData, CategoryNews, CategoryTrade:
		return true
	}
	return false
}

// Table returns the credential table for c. Only call it on a valid category.
func (c Category) Table() string {
	return string(c) + "_credentials"
}

// Environment separates live keys from sandbox keys.
type Environment string

// Environments.
const (
	EnvironmentLive Environment = "live"
	EnvironmentTest Environment = "test"
)

// ParseEnvironment validates s as an Environment. An empty string means live.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case "", EnvironmentLive:
		return EnvironmentLive, nil
	case EnvironmentTest:
		return EnvironmentTest, nil
	}
	return "", ErrInvalidEnvironment
}

// Status is the lifecycle state of a credential.
type Status string

// Credential statuses.
const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
	StatusError   Status = "error"
)

// Credential is a stored provider API key.
type Credential struct {
	ID          uuid.UUID
	UserID      int64
	Category    Category
	ProviderID  int64
	Label       string
	Ciphertext  cryptoDomain.EncryptedSecret `json:"-"`
	Fingerprint string
	Last4       string
	Environment Environment
	Status      Status
	// ErrorCount counts consecutive provider rejections since the last success.
	ErrorCount int
	// Version increases on every upsert of the same scope.
	Version    int64
	LastUsedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Summary is the view of a credential safe to return to its owner.
type Summary struct {
	ID          uuid.UUID
	Category    Category
	ProviderID  int64
	Label       string
	Last4       string
	Environment Environment
	Status      Status
	ErrorCount  int
	Version     int64
	LastUsedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Summary strips secret material from c.
func (c *Credential) Summary() *Summary {
	return &Summary{
		ID:          c.ID,
		Category:    c.Category,
		ProviderID:  c.ProviderID,
		Label:       c.Label,
		Last4:       c.Last4,
		Environment: c.Environment,
		Status:      c.Status,
		ErrorCount:  c.ErrorCount,
		Version:     c.Version,
		LastUsedAt:  c.LastUsedAt,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// PutInput holds the data for storing or replacing a credential.
type PutInput struct {
	UserID      int64
	Category    Category
	ProviderID  int64
	Secret      string `json:"-"`
	Label       string
	Environment Environment
}

// PutResult reports the stored credential and whether a new row was created.
type PutResult struct {
	Credential *Summary
	Created    bool
}

// DecryptedCredential is a usable API key together with the row it came from.
type DecryptedCredential struct {
	ID       uuid.UUID
	Category Category
	Secret   string `json:"-"`
}

// RewrapResult summarizes a rewrap pass over one category.
type RewrapResult struct {
	Scanned   int
	Rewrapped int
	Failed    int
}

// Fingerprint returns the hex SHA-256 of secret, used to spot duplicate keys
// without decrypting.
func Fingerprint(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Last4 returns the last four characters of secret for display.
func Last4(secret string) string {
	runes := []rune(secret)
	if len(runes) <= 4 {
		return string(runes)
	}
	return string(runes[len(runes)-4:])
}
