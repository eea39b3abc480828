// Package service provides bearer token signing and verification.
package service

import (
	"time"

	authDomain "github.com/allisson/tradejournal/internal/auth/domain"
)

// TokenService signs and verifies HS256 bearer tokens whose subject is a user id.
type TokenService interface {
	// Issue signs a token for userID valid for ttl.
	Issue(userID int64, ttl time.Duration) (token string, expiresAt time.Time, err error)

	// Verify checks signature, expiry and issuer and returns the principal.
	Verify(token string) (*authDomain.Principal, error)
}
