// Package cli is the ventactl command set: it wires config, token store, auth client and
// request pipeline together and renders the domain services' results as text.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/jrsteele09/venta-admin/apiclient"
	"github.com/jrsteele09/venta-admin/auth"
	"github.com/jrsteele09/venta-admin/contacts"
	"github.com/jrsteele09/venta-admin/customorders"
	"github.com/jrsteele09/venta-admin/internal/config"
	"github.com/jrsteele09/venta-admin/internal/logging"
	"github.com/jrsteele09/venta-admin/internal/metrics"
	"github.com/jrsteele09/venta-admin/products"
	"github.com/jrsteele09/venta-admin/tokenstore"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Exit codes returned by Run.
const (
	ExitOK             = 0
	ExitError          = 1
	ExitSessionExpired = 2
	ExitUsage          = 64
)

// PasswordReader prompts for a password without echoing it.
type PasswordReader func(prompt string) (string, error)

type App struct {
	cfg      config.Config
	log      zerolog.Logger
	out      io.Writer
	errOut   io.Writer
	in       *bufio.Reader
	color    bool
	password PasswordReader
	backend  tokenstore.Backend
	registry *prometheus.Registry

	store    *tokenstore.Store
	auth     *auth.Client
	api      *apiclient.Client
	metrics  *metrics.Pipeline
	products *products.Service
	orders   *customorders.Service
	contacts *contacts.Service

	expired atomic.Bool
}

type AppOption func(*App)

// WithIO replaces stdin, stdout and stderr. Colour is only used when out is a terminal.
func WithIO(in io.Reader, out, errOut io.Writer) AppOption {
	return func(a *App) {
		a.in = bufio.NewReader(in)
		a.out = out
		a.errOut = errOut
	}
}

func WithPasswordReader(fn PasswordReader) AppOption {
	return func(a *App) {
		a.password = fn
	}
}

// WithBackend overrides the session file configured in the environment.
func WithBackend(backend tokenstore.Backend) AppOption {
	return func(a *App) {
		a.backend = backend
	}
}

func WithLogger(log zerolog.Logger) AppOption {
	return func(a *App) {
		a.log = log
	}
}

func NewApp(cfg config.Config, options ...AppOption) (*App, error) {
	a := &App{
		cfg:      cfg,
		log:      logging.New(cfg.GetLogLevel(), cfg.GetEnv()),
		out:      os.Stdout,
		errOut:   os.Stderr,
		in:       bufio.NewReader(os.Stdin),
		registry: prometheus.NewRegistry(),
	}
	a.password = a.promptPassword
	for _, opt := range options {
		opt(a)
	}
	if f, ok := a.out.(*os.File); ok {
		a.color = term.IsTerminal(int(f.Fd()))
	}

	if a.backend == nil {
		backend, err := tokenstore.NewFileBackend(cfg.GetSessionFile())
		if err != nil {
			return nil, errors.Wrap(err, "[NewApp] session file")
		}
		a.backend = backend
	}
	store, err := tokenstore.New(a.backend, tokenstore.WithLogger(a.log))
	if err != nil {
		return nil, errors.Wrap(err, "[NewApp] token store")
	}
	a.store = store

	// Login and refresh share the pipeline's cookie jar.
	httpClient, err := apiclient.NewHTTPClient(cfg.GetRequestTimeout())
	if err != nil {
		return nil, err
	}
	authClient, err := auth.NewClient(cfg.GetAdminAPIURL(), store,
		auth.WithHTTPClient(httpClient),
		auth.WithLogger(a.log),
		auth.WithRevokeOnLogout(cfg.GetRevokeOnLogout()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[NewApp] auth client")
	}
	a.auth = authClient

	a.metrics = metrics.NewPipeline(a.registry)
	api, err := apiclient.New(cfg.GetAdminAPIURL(), store, authClient,
		apiclient.WithHTTPClient(httpClient),
		apiclient.WithLogger(a.log),
		apiclient.WithMetrics(a.metrics),
		apiclient.WithRefreshTimeout(cfg.GetRefreshTimeout()),
		apiclient.WithOnSessionExpired(a.onSessionExpired),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[NewApp] api client")
	}
	a.api = api

	a.products = products.NewService(api, products.WithLogger(a.log))
	a.orders = customorders.NewService(api, customorders.WithLogger(a.log))
	a.contacts = contacts.NewService(api, contacts.WithLogger(a.log))
	return a, nil
}

// Run executes one command line (without the program name) and returns the exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	showMetrics := false
	if len(args) > 0 && args[0] == "--metrics" {
		showMetrics = true
		args = args[1:]
	}
	if len(args) == 0 {
		a.usage()
		return ExitUsage
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(a.errOut, "unknown command %q\n\n", args[0])
		a.usage()
		return ExitUsage
	}

	err := cmd.run(ctx, a, args[1:])
	if showMetrics {
		a.printMetrics()
	}

	switch {
	case a.sessionExpired():
		return ExitSessionExpired
	case errors.Is(err, errUsage):
		fmt.Fprintf(a.errOut, "usage: ventactl %s %s\n", args[0], cmd.usage)
		return ExitUsage
	case err != nil:
		fmt.Fprintln(a.errOut, err.Error())
		return ExitError
	}
	return ExitOK
}

// onSessionExpired is the pipeline's session-expired hook: the session is already cleared,
// so all that is left is to send the admin back to the login entry point.
func (a *App) onSessionExpired(_ context.Context, err error) {
	if !a.expired.CompareAndSwap(false, true) {
		return
	}
	a.log.Debug().Err(err).Msg("session expired")
	fmt.Fprintf(a.errOut, "%s: %s\n", err.Error(), a.cfg.GetLoginEntryPoint())
}

func (a *App) sessionExpired() bool {
	return a.expired.Load()
}

func (a *App) promptPassword(prompt string) (string, error) {
	fmt.Fprint(a.errOut, prompt)
	defer fmt.Fprintln(a.errOut)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := a.in.ReadString('\n')
		if err != nil && line == "" {
			return "", errors.Wrap(err, "read password")
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	raw, err := term.ReadPassword(fd)
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	return string(raw), nil
}

func (a *App) readLine(prompt string) (string, error) {
	fmt.Fprint(a.errOut, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", errors.Wrap(err, "read input")
	}
	return strings.TrimSpace(line), nil
}

func (a *App) printMetrics() {
	families, err := a.registry.Gather()
	if err != nil {
		a.log.Warn().Err(err).Msg("gather metrics")
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			fmt.Fprintf(a.errOut, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
		}
	}
}
