package apiclient

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/jrsteele09/venta-admin/internal/metrics"
	"github.com/jrsteele09/venta-admin/internal/wire"
	"github.com/jrsteele09/venta-admin/sessions"
	"github.com/pkg/errors"
)

// state is where a single attempt ended up once its response was classified.
type state int

const (
	stateSuccess state = iota
	stateAuthFailed
	stateFailed
)

// execute drives one logical request: send, classify, and on a first 401 refresh and
// resend once. The retry's outcome is final whatever it is.
func (c *Client) execute(ctx context.Context, p *pendingRequest) (*Response, string, error) {
	accessToken, _ := c.tokens.GetAccessToken()
	resp, err := c.attempt(ctx, p, accessToken)
	if err != nil {
		return nil, metrics.OutcomeNetworkError, err
	}

	switch c.classify(resp) {
	case stateSuccess:
		return resp, metrics.OutcomeSuccess, nil
	case stateFailed:
		return nil, metrics.OutcomeUpstreamError, upstreamError(resp)
	}
	return c.refreshAndRetry(ctx, p, resp, accessToken)
}

func (c *Client) refreshAndRetry(ctx context.Context, p *pendingRequest, unauthorized *Response, sentToken string) (*Response, string, error) {
	if p.retried {
		return nil, metrics.OutcomeUnauthorized, upstreamError(unauthorized)
	}

	c.log.Debug().Str("request_id", p.requestID).Str("url", p.url).Msg("unauthorized, refreshing session")
	accessToken, err := c.coordinator.Refresh(ctx, sentToken)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, metrics.OutcomeNetworkError, errors.Wrap(ctxErr, "[Client.Do] waiting for refresh")
		}
		c.log.Warn().Err(err).Str("request_id", p.requestID).Msg("session expired")
		if c.onSessionExpired != nil {
			c.onSessionExpired(ctx, err)
		}
		return nil, metrics.OutcomeSessionExpired, err
	}
	p.retried = true
	c.metrics.ObserveRetry()
	resp, err := c.attempt(ctx, p, accessToken)
	if err != nil {
		return nil, metrics.OutcomeNetworkError, err
	}

	switch c.classify(resp) {
	case stateSuccess:
		return resp, metrics.OutcomeSuccess, nil
	case stateAuthFailed:
		return nil, metrics.OutcomeUnauthorized, upstreamError(resp)
	default:
		return nil, metrics.OutcomeUpstreamError, upstreamError(resp)
	}
}

// attempt is one trip over the wire: build, authorize, send.
func (c *Client) attempt(ctx context.Context, p *pendingRequest, accessToken string) (*Response, error) {
	req, err := c.buildRequest(ctx, p)
	if err != nil {
		return nil, err
	}
	c.attachAuth(req, accessToken)
	return c.send(req, p)
}

// buildRequest materialises the pending request. It can be called again for the retry and
// produces an identical request, body included.
func (c *Client) buildRequest(ctx context.Context, p *pendingRequest) (*http.Request, error) {
	var body io.Reader
	if p.body != nil {
		body = bytes.NewReader(p.body)
	}
	req, err := http.NewRequestWithContext(ctx, p.method, p.url, body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.buildRequest]")
	}
	for k, vs := range p.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if p.contentType != "" {
		req.Header.Set("Content-Type", p.contentType)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, p.requestID)
	return req, nil
}

// attachAuth sets the bearer header when there is a token. Without one the request goes
// out anonymously, which is what the public endpoints expect.
func (c *Client) attachAuth(req *http.Request, accessToken string) {
	req.Header.Del("Authorization")
	if accessToken == "" {
		return
	}
	sessions.BearerToken(accessToken).SetAuthHeader(req)
}

func (c *Client) send(req *http.Request, p *pendingRequest) (*Response, error) {
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("request_id", p.requestID).Str("url", p.url).Msg("transport failure")
		return nil, &NetworkError{Method: p.method, URL: p.url, Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Method: p.method, URL: p.url, Err: errors.Wrap(err, "read response body")}
	}

	c.log.Debug().
		Str("request_id", p.requestID).
		Str("method", p.method).
		Str("url", p.url).
		Int("status", httpResp.StatusCode).
		Bool("retried", p.retried).
		Msg("api call")
	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: body}, nil
}

func (c *Client) classify(resp *Response) state {
	switch {
	case resp.Status == http.StatusUnauthorized:
		return stateAuthFailed
	case isSuccess(resp.Status):
		return stateSuccess
	default:
		return stateFailed
	}
}

func upstreamError(resp *Response) *UpstreamError {
	return &UpstreamError{
		Status:  resp.Status,
		Message: wire.MessageOr(resp.Body, fallbackMessage(resp.Status)),
		Body:    resp.Body,
	}
}
