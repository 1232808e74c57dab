package apitest

import (
	"context"
	"testing"

	"github.com/jrsteele09/venta-admin/apiclient"
	"github.com/jrsteele09/venta-admin/auth"
	"github.com/jrsteele09/venta-admin/tokenstore"
	"github.com/jrsteele09/venta-admin/tokenstore/backendfake"
	"github.com/stretchr/testify/require"
)

// Stack is the production client wiring pointed at the fake server.
type Stack struct {
	Store *tokenstore.Store
	Auth  *auth.Client
	API   *apiclient.Client
}

// NewStack wires store, auth client and request pipeline against s without logging in.
func (s *Server) NewStack(t testing.TB, options ...apiclient.Option) *Stack {
	t.Helper()
	store, err := tokenstore.New(backendfake.NewFakeBackend())
	require.NoError(t, err)
	authClient, err := auth.NewClient(s.BaseURL(), store)
	require.NoError(t, err)
	api, err := apiclient.New(s.BaseURL(), store, authClient, options...)
	require.NoError(t, err)
	return &Stack{Store: store, Auth: authClient, API: api}
}

// NewLoggedInStack is NewStack plus a login as the default admin.
func (s *Server) NewLoggedInStack(t testing.TB, options ...apiclient.Option) *Stack {
	t.Helper()
	stack := s.NewStack(t, options...)
	_, err := stack.Auth.Login(context.Background(), DefaultEmail, DefaultPassword)
	require.NoError(t, err)
	return stack
}
