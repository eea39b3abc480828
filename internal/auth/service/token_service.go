package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authDomain "github.com/allisson/tradejournal/internal/auth/domain"
	apperrors "github.com/allisson/tradejournal/internal/errors"
)

// tokenService implements TokenService with golang-jwt using HMAC-SHA256.
type tokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// Issue signs a token for userID.
func (t *tokenService) Issue(userID int64, ttl time.Duration) (string, time.Time, error) {
	if userID <= 0 {
		return "", time.Time{}, authDomain.ErrInvalidSubject
	}
	if ttl <= 0 {
		return "", time.Time{}, apperrors.Wrap(apperrors.ErrInvalidInput, "token ttl must be positive")
	}

	now := t.now()
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": expiresAt.Unix(),
	}
	if t.issuer != "" {
		claims["iss"] = t.issuer
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(err, "failed to sign token")
	}
	return signed, time.Unix(expiresAt.Unix(), 0).UTC(), nil
}

// Verify parses token and returns the principal it names.
func (t *tokenService) Verify(token string) (*authDomain.Principal, error) {
	if token == "" {
		return nil, authDomain.ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, authDomain.ErrExpiredToken
		}
		return nil, authDomain.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, authDomain.ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, authDomain.ErrInvalidSubject
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return nil, authDomain.ErrInvalidSubject
	}

	principal := &authDomain.Principal{UserID: userID}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		principal.ExpiresAt = exp.UTC()
	}
	return principal, nil
}

// NewTokenService creates a TokenService. An empty issuer disables the iss check.
func NewTokenService(secret []byte, issuer string) (TokenService, error) {
	if len(secret) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "jwt secret must not be empty")
	}
	return &tokenService{
		secret: secret,
		issuer: issuer,
		now:    time.Now,
	}, nil
}
