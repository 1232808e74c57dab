package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork matches every *NetworkError
	ErrNetwork = errors.New("network error")
	// ErrUpstream matches every *UpstreamError
	ErrUpstream = errors.New("upstream error")
)

// NetworkError means no HTTP response was received. It never triggers a refresh.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UpstreamError is a response with a non-success status that the pipeline hands back as final.
type UpstreamError struct {
	Status  int
	Message string // Server supplied message, or "Request failed with status N"
	Body    []byte
}

func (e *UpstreamError) Error() string {
	return e.Message
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// ServerMessage is the message the server sent, or "" when Message is the generic fallback.
func (e *UpstreamError) ServerMessage() string {
	if e.Message == fallbackMessage(e.Status) {
		return ""
	}
	return e.Message
}

func fallbackMessage(status int) string {
	return fmt.Sprintf("Request failed with status %d", status)
}
