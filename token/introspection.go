package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var ErrNotJWT = errors.New("access token is not a JWT")

// Claims is the client-side view of an access token. The signature is NOT verified:
// the values are for display only and must never gate a request. Expiry is discovered
// when a protected call comes back unauthorized.
type Claims struct {
	Subject   string    // Admin account the token was issued to
	IssuedAt  time.Time // Zero when the claim is absent
	ExpiresAt time.Time // Zero when the claim is absent
}

// Inspect decodes the registered claims of a JWT access token without verifying it.
// Opaque (non-JWT) tokens return ErrNotJWT.
func Inspect(rawToken string) (*Claims, error) {
	rawToken = strings.TrimSpace(rawToken)
	if strings.Count(rawToken, ".") != 2 {
		return nil, ErrNotJWT
	}

	registered := &jwtlib.RegisteredClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, registered); err != nil {
		return nil, errors.Wrap(ErrNotJWT, err.Error())
	}

	claims := &Claims{Subject: registered.Subject}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}

// ExpiresIn is the time left before the exp claim, zero or negative once passed.
// Tokens without an exp claim report ok=false.
func (c *Claims) ExpiresIn(now time.Time) (remaining time.Duration, ok bool) {
	if c == nil || c.ExpiresAt.IsZero() {
		return 0, false
	}
	return c.ExpiresAt.Sub(now), true
}
