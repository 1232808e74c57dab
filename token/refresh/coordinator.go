package refresh

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	refreshKey            = "refresh"
	defaultRefreshTimeout = 10 * time.Second
)

// Refresher exchanges the stored refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// TokenSource reads the currently stored access token.
type TokenSource interface {
	GetAccessToken() (string, bool)
}

// Coordinator funnels concurrent refresh triggers into a single in-flight refresh.
// The first caller starts it and everyone arriving while it runs waits for the same result.
// A caller holding a token that has already been replaced skips the refresh and gets the
// current token, so a 401 that lands just after a refresh settled doesn't start another one.
type Coordinator struct {
	refresher Refresher
	tokens    TokenSource
	timeout   time.Duration
	log       zerolog.Logger
	observe   func(err error)

	group singleflight.Group
	calls atomic.Int64
}

type CoordinatorOption func(*Coordinator)

// WithTimeout bounds how long a refresh (and everyone waiting on it) may take.
func WithTimeout(timeout time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithLogger(log zerolog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.log = log
	}
}

// WithObserver registers fn to run once per executed refresh with its result. Callers that
// join a flight or find the token already rotated don't trigger it.
func WithObserver(fn func(err error)) CoordinatorOption {
	return func(c *Coordinator) {
		c.observe = fn
	}
}

func NewCoordinator(refresher Refresher, tokens TokenSource, options ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		refresher: refresher,
		tokens:    tokens,
		timeout:   defaultRefreshTimeout,
		log:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Refresh returns a fresh access token for a request that was rejected while presenting
// staleToken. The shared refresh is detached from ctx so one caller giving up doesn't fail
// the others; ctx only bounds this caller's wait.
func (c *Coordinator) Refresh(ctx context.Context, staleToken string) (string, error) {
	if current, ok := c.tokens.GetAccessToken(); ok && current != staleToken {
		c.log.Debug().Msg("refresh: token already rotated, reusing current")
		return current, nil
	}

	result := c.group.DoChan(refreshKey, func() (interface{}, error) {
		// A flight that settled between the check above and here has already rotated it.
		if current, ok := c.tokens.GetAccessToken(); ok && current != staleToken {
			return current, nil
		}
		c.calls.Add(1)
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		c.log.Info().Msg("refresh: starting")
		accessToken, err := c.refresher.Refresh(refreshCtx)
		if c.observe != nil {
			c.observe(err)
		}
		if err != nil {
			c.log.Error().Err(err).Msg("refresh: failed")
			return "", err
		}
		c.log.Info().Msg("refresh: succeeded")
		return accessToken, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Calls is the number of refreshes actually executed.
func (c *Coordinator) Calls() int64 {
	return c.calls.Load()
}
