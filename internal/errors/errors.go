// Package errors holds the sentinel errors shared by the admin client packages.
// Wrapping goes through github.com/pkg/errors; these are the values callers match with errors.Is.
package errors

import "errors"

var (
	// ErrInvalidCredentials is the cause of a login the API rejected with 401
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Session errors
	ErrNoSession       = errors.New("no session")
	ErrNoRefreshToken  = errors.New("no refresh token available")
	ErrMalformedTokens = errors.New("malformed token response")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInvalidBody = errors.New("invalid response body")
)
