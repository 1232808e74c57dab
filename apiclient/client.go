// Package apiclient is the single chokepoint every admin API call goes through.
//
// It attaches the stored access token as a bearer header and, when the server answers 401,
// refreshes the session once (shared by every request that failed at the same time) and
// resends the request exactly once. If the refresh fails the session is gone: the caller
// gets the *auth.SessionExpiredError and the session-expired hook fires.
package apiclient

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/venta-admin/internal/metrics"
	"github.com/jrsteele09/venta-admin/token/refresh"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "ventactl"
	maxResponseBytes = 10 << 20

	// RequestIDHeader carries one id per logical request, shared by the first attempt and its retry.
	RequestIDHeader = "X-Request-ID"
)

// SessionExpiredFunc is told when a refresh failed and the admin has to log in again.
type SessionExpiredFunc func(ctx context.Context, err error)

type Client struct {
	baseURL          string
	tokens           refresh.TokenSource
	coordinator      *refresh.Coordinator
	httpClient       *http.Client
	log              zerolog.Logger
	onSessionExpired SessionExpiredFunc
	metrics          *metrics.Pipeline
	refreshTimeout   time.Duration
	userAgent        string
	newRequestID     func() string
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithOnSessionExpired registers the hook run when a refresh fails. The CLI uses it to tell
// the admin to log in again. Every request that was waiting on the failed refresh runs the
// hook with its own ctx, so concurrent requests may fire it more than once for one expiry;
// implementations that must act once need to dedupe themselves.
func WithOnSessionExpired(fn SessionExpiredFunc) Option {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

func WithMetrics(m *metrics.Pipeline) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithRefreshTimeout bounds the shared refresh. Zero keeps the coordinator default.
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.refreshTimeout = timeout
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// NewHTTPClient is the cookie-aware client used when none is supplied.
func NewHTTPClient(timeout time.Duration) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(err, "[NewHTTPClient] cookie jar")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Jar: jar, Timeout: timeout}, nil
}

// New builds the client for the admin API rooted at baseURL. tokens supplies the bearer
// token and refresher renews it; in production both are backed by the auth package.
func New(baseURL string, tokens refresh.TokenSource, refresher refresh.Refresher, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[apiclient.New] base URL is required")
	}
	if tokens == nil || refresher == nil {
		return nil, errors.New("[apiclient.New] token source and refresher are required")
	}

	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokens:       tokens,
		log:          zerolog.Nop(),
		userAgent:    defaultUserAgent,
		newRequestID: uuid.NewString,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.httpClient == nil {
		httpClient, err := NewHTTPClient(defaultTimeout)
		if err != nil {
			return nil, err
		}
		c.httpClient = httpClient
	}
	c.coordinator = refresh.NewCoordinator(refresher, tokens,
		refresh.WithTimeout(c.refreshTimeout),
		refresh.WithLogger(c.log),
		refresh.WithObserver(c.observeRefresh),
	)
	return c, nil
}

func (c *Client) observeRefresh(err error) {
	if err != nil {
		c.metrics.ObserveRefresh(metrics.ResultFailure)
		return
	}
	c.metrics.ObserveRefresh(metrics.ResultSuccess)
}

// BaseURL is the admin API root every path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Refreshes is the number of token refreshes this client has actually performed.
func (c *Client) Refreshes() int64 {
	return c.coordinator.Calls()
}

// Do runs one logical request through the pipeline. A non-2xx response comes back as an
// *UpstreamError, a transport failure as a *NetworkError, and a failed refresh as the
// refresher's error (an *auth.SessionExpiredError in production).
func (c *Client) Do(ctx context.Context, method, path string, opts *RequestOptions) (*Response, error) {
	p, err := c.newPendingRequest(method, path, opts)
	if err != nil {
		return nil, err
	}
	resp, outcome, err := c.execute(ctx, p)
	c.metrics.ObserveRequest(method, outcome)
	return resp, err
}

func (c *Client) Get(ctx context.Context, path string, query map[string][]string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, &RequestOptions{Query: query})
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, &RequestOptions{JSON: body})
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, &RequestOptions{JSON: body})
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// GetJSON is Get followed by decoding the body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query map[string][]string, out any) error {
	resp, err := c.Get(ctx, path, query)
	if err != nil {
		return err
	}
	return resp.DecodeJSON(out)
}

func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	resp, err := c.Post(ctx, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.DecodeJSON(out)
}

func (c *Client) PutJSON(ctx context.Context, path string, body, out any) error {
	resp, err := c.Put(ctx, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.DecodeJSON(out)
}
