package apiclient

import (
	"context"
	"net/http"

	apperrors "github.com/jrsteele09/venta-admin/internal/errors"
	"github.com/pkg/errors"
)

// Doer is the part of *Client the domain services depend on.
type Doer interface {
	Do(ctx context.Context, method, path string, opts *RequestOptions) (*Response, error)
}

// OperationError is a failed domain call. Message is fit to show the admin: the server's
// own message when it sent one, otherwise the operation's fallback ("Failed to fetch
// products", "Product not found", ...).
type OperationError struct {
	Message string
	Status  int // 0 when the response could not be decoded
	Err     error
}

func (e *OperationError) Error() string {
	return e.Message
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is lets callers test a 404 against apperrors.ErrNotFound.
func (e *OperationError) Is(target error) bool {
	return target == apperrors.ErrNotFound && e.Status == http.StatusNotFound
}

// Failure converts an error from Do into what a domain service returns. Upstream
// rejections become an *OperationError; session expiry, network failures and context
// errors pass through unchanged so callers can still tell them apart.
func Failure(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		return err
	}
	msg := upstream.ServerMessage()
	if msg == "" {
		msg = fallback
	}
	return &OperationError{Message: msg, Status: upstream.Status, Err: err}
}

// Decode unmarshals resp into out, reporting a malformed body under the operation's fallback.
func Decode(resp *Response, out any, fallback string) error {
	if err := resp.DecodeJSON(out); err != nil {
		return &OperationError{Message: fallback, Err: errors.Wrap(apperrors.ErrInvalidBody, err.Error())}
	}
	return nil
}

// Fetch runs a request and decodes the success body into out (which may be nil).
func Fetch(ctx context.Context, api Doer, method, path string, opts *RequestOptions, out any, fallback string) error {
	resp, err := api.Do(ctx, method, path, opts)
	if err != nil {
		return Failure(err, fallback)
	}
	if out == nil {
		return nil
	}
	return Decode(resp, out, fallback)
}
