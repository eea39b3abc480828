// Package domain defines the authenticated principal and authentication errors.
package domain

import (
	"github.com/allisson/tradejournal/internal/errors"
)

// Authentication errors. All of them map to 401.
var (
	// ErrInvalidToken indicates a token that is malformed, badly signed or from another issuer.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrExpiredToken indicates a token whose exp claim is in the past.
	ErrExpiredToken = errors.Wrap(errors.ErrUnauthorized, "token has expired")

	// ErrInvalidSubject indicates a token whose sub claim is not a positive user id.
	ErrInvalidSubject = errors.Wrap(errors.ErrUnauthorized, "invalid token subject")
)
