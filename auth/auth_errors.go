package auth

import (
	"errors"
)

var (
	// ErrAuthentication matches every *AuthenticationError
	ErrAuthentication = errors.New("authentication failed")
	// ErrSessionExpired matches every *SessionExpiredError
	ErrSessionExpired = errors.New("session expired")
)

const (
	defaultLoginFailedMessage = "Login failed"
	sessionExpiredMessage     = "Session expired. Please login again"
)

// AuthenticationError is a rejected login: bad credentials or a malformed request.
// Message is shown to the admin as is. It is never retried automatically.
type AuthenticationError struct {
	Status  int    // HTTP status, 0 when no response was received
	Message string // Server supplied message, or "Login failed"
	Err     error  // Underlying cause, if any
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// SessionExpiredError means the refresh token was missing, invalid or rejected.
// The stored session has always been cleared by the time it is returned.
type SessionExpiredError struct {
	Err error // Why the refresh failed
}

func (e *SessionExpiredError) Error() string {
	return sessionExpiredMessage
}

func (e *SessionExpiredError) Is(target error) bool {
	return target == ErrSessionExpired
}

func (e *SessionExpiredError) Unwrap() error {
	return e.Err
}
