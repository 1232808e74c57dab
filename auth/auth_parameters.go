package auth

import (
	"strings"

	"github.com/jrsteele09/venta-admin/sessions"
)

// LoginRequest is the body POSTed to /auth/login.
// Exactly one of Email or Username is set, chosen from the identifier the admin typed.
// Example: {"email": "alice@example.com", "password": "secret"}
// Example: {"username": "alice", "password": "secret"}
type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// NewLoginRequest selects the identifier field: anything containing "@" is an email.
// No password policy is enforced client side.
func NewLoginRequest(identifier, password string) LoginRequest {
	if strings.Contains(identifier, "@") {
		return LoginRequest{Email: identifier, Password: password}
	}
	return LoginRequest{Username: identifier, Password: password}
}

// LoginResponse is returned by /auth/login on success.
type LoginResponse struct {
	// AccessToken is sent as "Authorization: Bearer <accessToken>" on protected calls.
	// Lifespan: short, expiry is discovered when a call returns 401
	AccessToken string `json:"accessToken"`

	// RefreshToken is presented to /auth/refresh. The server rotates it on every refresh.
	RefreshToken string `json:"refreshToken"`

	// Admin is the logged in account, cached for display.
	Admin sessions.Profile `json:"admin"`
}

// RefreshRequest is the body POSTed to /auth/refresh (and to /auth/logout when revocation is on).
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse carries both rotated tokens.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (r *LoginResponse) complete() bool {
	return r.AccessToken != "" && r.RefreshToken != ""
}

func (r *RefreshResponse) complete() bool {
	return r.AccessToken != "" && r.RefreshToken != ""
}
