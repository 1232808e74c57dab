package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/venta-admin/internal/errors"
	"github.com/jrsteele09/venta-admin/internal/wire"
	"github.com/jrsteele09/venta-admin/sessions"
	"github.com/jrsteele09/venta-admin/tokenstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	logoutTimeout      = 5 * time.Second
	maxAuthBodyBytes   = 1 << 20
)

// Client performs the authentication protocol calls (login, refresh, logout) and is the
// only writer of the token store. It uses its own http.Client rather than the request
// pipeline so that a failing login or refresh can never loop back into refresh-and-retry.
type Client struct {
	baseURL        string
	store          *tokenstore.Store
	httpClient     *http.Client
	log            zerolog.Logger
	revokeOnLogout bool
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithRevokeOnLogout makes Logout send a best-effort POST /auth/logout before clearing
// the local session. The local clear happens regardless of the outcome.
func WithRevokeOnLogout(revoke bool) ClientOption {
	return func(c *Client) {
		c.revokeOnLogout = revoke
	}
}

// NewClient builds an auth client for the admin API rooted at baseURL
// (e.g. "http://localhost:5000/api/admin").
func NewClient(baseURL string, store *tokenstore.Store, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[NewClient] base URL is required")
	}
	if store == nil {
		return nil, errors.New("[NewClient] token store is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		store:      store,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Login exchanges an email or username plus password for a session and stores it,
// replacing whatever session was there before.
func (c *Client) Login(ctx context.Context, identifier, password string) (*sessions.Session, error) {
	status, body, err := c.postJSON(ctx, RouteLogin, NewLoginRequest(identifier, password))
	if err != nil {
		c.log.Warn().Err(err).Msg("login: transport failure")
		return nil, &AuthenticationError{Message: defaultLoginFailedMessage, Err: err}
	}
	if !isSuccess(status) {
		c.log.Info().Int("status", status).Msg("login: rejected")
		authErr := &AuthenticationError{
			Status:  status,
			Message: wire.MessageOr(body, defaultLoginFailedMessage),
		}
		if status == http.StatusUnauthorized {
			authErr.Err = apperrors.ErrInvalidCredentials
		}
		return nil, authErr
	}

	var resp LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil || !resp.complete() {
		return nil, &AuthenticationError{
			Status:  status,
			Message: defaultLoginFailedMessage + ": malformed response",
			Err:     apperrors.ErrMalformedTokens,
		}
	}

	if err := c.store.SetSession(resp.AccessToken, resp.RefreshToken, resp.Admin); err != nil {
		if clearErr := c.store.Clear(); clearErr != nil {
			c.log.Error().Err(clearErr).Msg("login: clearing partial session failed")
		}
		return nil, errors.Wrap(err, "[Client.Login] store session")
	}

	c.log.Info().Str("admin_id", resp.Admin.ID).Msg("login: session stored")
	return &sessions.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.Admin,
	}, nil
}

// Refresh trades the stored refresh token for a new token pair and returns the new access
// token. Any failure clears the whole session and returns a *SessionExpiredError; a missing
// refresh token fails without touching the network.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	refreshToken, ok := c.store.GetRefreshToken()
	if !ok {
		return "", c.expire(apperrors.ErrNoRefreshToken)
	}

	status, body, err := c.postJSON(ctx, RouteRefresh, RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", c.expire(errors.Wrap(err, "[Client.Refresh] transport"))
	}
	if !isSuccess(status) {
		return "", c.expire(errors.Errorf("[Client.Refresh] status %d: %s", status, wire.MessageOr(body, http.StatusText(status))))
	}

	var resp RefreshResponse
	if err := json.Unmarshal(body, &resp); err != nil || !resp.complete() {
		return "", c.expire(apperrors.ErrMalformedTokens)
	}
	if err := c.store.SetTokens(resp.AccessToken, resp.RefreshToken); err != nil {
		return "", c.expire(errors.Wrap(err, "[Client.Refresh] store tokens"))
	}
	return resp.AccessToken, nil
}

// Logout clears the local session. With revocation enabled the refresh token is first
// offered to /auth/logout on a best-effort basis.
func (c *Client) Logout(ctx context.Context) error {
	if c.revokeOnLogout {
		c.revoke(ctx)
	}
	if err := c.store.Clear(); err != nil {
		return errors.Wrap(err, "[Client.Logout] clear session")
	}
	c.log.Info().Msg("logout: session cleared")
	return nil
}

// IsAuthenticated reports whether an access token is cached. It does not check expiry.
func (c *Client) IsAuthenticated() bool {
	_, ok := c.store.GetAccessToken()
	return ok
}

func (c *Client) GetProfile() (*sessions.Profile, bool) {
	return c.store.GetProfile()
}

func (c *Client) revoke(ctx context.Context) {
	refreshToken, ok := c.store.GetRefreshToken()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, logoutTimeout)
	defer cancel()

	status, _, err := c.postJSON(ctx, RouteLogout, RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		c.log.Warn().Err(err).Msg("logout: revoke failed")
		return
	}
	if !isSuccess(status) {
		c.log.Warn().Int("status", status).Msg("logout: revoke rejected")
	}
}

func (c *Client) expire(cause error) error {
	if err := c.store.Clear(); err != nil {
		c.log.Error().Err(err).Msg("refresh: failed to clear session")
	}
	c.log.Error().Err(cause).Msg("refresh: session expired")
	return &SessionExpiredError{Err: cause}
}

func (c *Client) postJSON(ctx context.Context, route string, payload any) (int, []byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, errors.Wrap(err, "marshal request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+route, bytes.NewReader(raw))
	if err != nil {
		return 0, nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAuthBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, errors.Wrap(err, "read response")
	}
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
