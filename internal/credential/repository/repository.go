// Package repository implements credential persistence for PostgreSQL and MySQL.
// Each provider category is stored in its own table; the table name is derived from
// a validated category and never from user input.
package repository

import (
	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
)

const credentialColumns = `id, user_id, provider_id, label, api_key_ciphertext, key_fingerprint, last4,
			  environment, status, error_count, version, last_used_at, created_at, updated_at`

// tableFor returns the credential table for category.
func tableFor(category credentialDomain.Category) (string, error) {
	if !category.Valid() {
		return "", credentialDomain.ErrInvalidCategory
	}
	return category.Table(), nil
}
