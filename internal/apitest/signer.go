package apitest

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// hmacSigner signs and checks the fake server's access tokens with a per-server secret.
type hmacSigner struct {
	secret []byte
	ttl    time.Duration
}

func newHMACSigner(secret string, ttl time.Duration) *hmacSigner {
	return &hmacSigner{secret: []byte(secret), ttl: ttl}
}

// createAccessToken issues a JWT shaped like the real API's: subject is the admin id.
func (h *hmacSigner) createAccessToken(adminID string) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"sub": adminID,
		"iat": now.Unix(),
		"exp": now.Add(h.ttl).Unix(),
		"jti": uuid.New().String(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with HMAC")
	}
	return signed, nil
}

func (h *hmacSigner) verificationKey(token *jwtlib.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}

func (h *hmacSigner) verify(token string) error {
	_, err := jwtlib.Parse(token, h.verificationKey, jwtlib.WithTimeFunc(NowTimeFunc))
	return err
}

// newRefreshToken is opaque to clients, like the real API's.
func newRefreshToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
