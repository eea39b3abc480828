package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/tradejournal/internal/errors"
)

// Page bounds shared by the provider and credential listings.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

var (
	// ErrInvalidOffset is returned for a negative or non-numeric offset.
	ErrInvalidOffset = apperrors.Wrap(apperrors.ErrInvalidInput, "offset must be a non-negative integer")

	// ErrInvalidLimit is returned for a limit outside 1..MaxPageLimit.
	ErrInvalidLimit = apperrors.Wrap(
		apperrors.ErrInvalidInput,
		fmt.Sprintf("limit must be between 1 and %d", MaxPageLimit),
	)
)

// ParsePagination reads offset and limit from the query string. Both are optional;
// a missing limit means DefaultPageLimit.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, ok := queryInt(c, "offset", 0)
	if !ok || offset < 0 {
		return 0, 0, ErrInvalidOffset
	}

	limit, ok = queryInt(c, "limit", DefaultPageLimit)
	if !ok || limit < 1 || limit > MaxPageLimit {
		return 0, 0, ErrInvalidLimit
	}

	return offset, limit, nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, bool) {
	raw, present := c.GetQuery(key)
	if !present || raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
