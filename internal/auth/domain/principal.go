package domain

import "time"

// Principal is the caller identified by a verified bearer token.
type Principal struct {
	UserID    int64
	ExpiresAt time.Time
}
