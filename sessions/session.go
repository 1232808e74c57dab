package sessions

import "golang.org/x/oauth2"

// Profile is the admin account cached alongside the tokens. It is display-only and is
// replaced wholesale on every login.
type Profile struct {
	ID       string `json:"id"`       // Admin account identifier
	Username string `json:"username"` // Login username
	Email    string `json:"email"`    // Login email
}

// Session is the credential pair issued by /auth/login and rotated by /auth/refresh.
type Session struct {
	AccessToken  string  // Short-lived bearer credential sent on protected calls
	RefreshToken string  // Longer-lived credential used solely to mint new access tokens
	User         Profile // Cached admin profile from the login response
}

// Valid reports whether both tokens are present. A session missing either one must not be
// used for protected calls.
func (s *Session) Valid() bool {
	return s != nil && s.AccessToken != "" && s.RefreshToken != ""
}

// Token returns the bearer token view of the access token.
func (s *Session) Token() *oauth2.Token {
	if s == nil || s.AccessToken == "" {
		return nil
	}
	return BearerToken(s.AccessToken)
}

// BearerToken wraps a raw access token so it can be written with SetAuthHeader.
func BearerToken(accessToken string) *oauth2.Token {
	return &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
}
