package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/venta-admin/auth"
	"github.com/jrsteele09/venta-admin/internal/apitest"
	apperrors "github.com/jrsteele09/venta-admin/internal/errors"
	"github.com/jrsteele09/venta-admin/sessions"
	"github.com/jrsteele09/venta-admin/tokenstore"
	"github.com/jrsteele09/venta-admin/tokenstore/backendfake"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	server *apitest.Server
	store  *tokenstore.Store
	client *auth.Client
}

func setupTestFixture(t *testing.T, options ...auth.ClientOption) *testFixture {
	t.Helper()
	server := apitest.NewServer(t)
	store, err := tokenstore.New(backendfake.NewFakeBackend())
	require.NoError(t, err)
	client, err := auth.NewClient(server.BaseURL(), store, options...)
	require.NoError(t, err)
	return &testFixture{server: server, store: store, client: client}
}

func (f *testFixture) login(t *testing.T) *sessions.Session {
	t.Helper()
	session, err := f.client.Login(context.Background(), apitest.DefaultEmail, apitest.DefaultPassword)
	require.NoError(t, err)
	return session
}

func TestNewClient_Validation(t *testing.T) {
	store, err := tokenstore.New(backendfake.NewFakeBackend())
	require.NoError(t, err)

	_, err = auth.NewClient("", store)
	require.Error(t, err)

	_, err = auth.NewClient("http://localhost/api/admin", nil)
	require.Error(t, err)
}

func TestLogin_WithEmail(t *testing.T) {
	f := setupTestFixture(t)

	session := f.login(t)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)
	require.Equal(t, apitest.DefaultAdminID, session.User.ID)
	require.Equal(t, apitest.DefaultUsername, session.User.Username)

	require.True(t, f.client.IsAuthenticated())
	stored, ok := f.store.Session()
	require.True(t, ok)
	require.Equal(t, session.AccessToken, stored.AccessToken)
	require.Equal(t, session.RefreshToken, stored.RefreshToken)

	profile, ok := f.client.GetProfile()
	require.True(t, ok)
	require.Equal(t, apitest.DefaultEmail, profile.Email)
}

func TestLogin_StoreFailureLeavesNoSession(t *testing.T) {
	server := apitest.NewServer(t)
	backend := backendfake.NewFakeBackend()
	diskFull := errors.New("disk full")
	backend.SetFailures = map[string]error{tokenstore.ProfileKey: diskFull}
	store, err := tokenstore.New(backend)
	require.NoError(t, err)
	client, err := auth.NewClient(server.BaseURL(), store)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), apitest.DefaultEmail, apitest.DefaultPassword)
	require.ErrorIs(t, err, diskFull)
	require.False(t, client.IsAuthenticated())
	_, ok := store.GetRefreshToken()
	require.False(t, ok)
	require.Equal(t, 0, backend.Len())
}

func TestLogin_WithUsername(t *testing.T) {
	f := setupTestFixture(t)

	session, err := f.client.Login(context.Background(), apitest.DefaultUsername, apitest.DefaultPassword)
	require.NoError(t, err)
	require.Equal(t, apitest.DefaultAdminID, session.User.ID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.client.Login(context.Background(), apitest.DefaultEmail, "wrong")
	require.Error(t, err)
	require.ErrorIs(t, err, auth.ErrAuthentication)

	var authErr *auth.AuthenticationError
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, http.StatusUnauthorized, authErr.Status)
	require.Equal(t, "Invalid credentials", authErr.Message)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	require.False(t, f.client.IsAuthenticated())
}

func TestLogin_FailureKeepsExistingSession(t *testing.T) {
	f := setupTestFixture(t)
	session := f.login(t)

	_, err := f.client.Login(context.Background(), apitest.DefaultEmail, "wrong")
	require.Error(t, err)

	access, ok := f.store.GetAccessToken()
	require.True(t, ok)
	require.Equal(t, session.AccessToken, access)
}

func TestLogin_ReplacesSession(t *testing.T) {
	f := setupTestFixture(t)
	f.server.AddAdmin("admin-2", "bob", "bob@example.com", "hunter22")
	f.login(t)

	session, err := f.client.Login(context.Background(), "bob@example.com", "hunter22")
	require.NoError(t, err)

	profile, ok := f.store.GetProfile()
	require.True(t, ok)
	require.Equal(t, "admin-2", profile.ID)
	access, _ := f.store.GetAccessToken()
	require.Equal(t, session.AccessToken, access)
}

func TestLogin_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	store, err := tokenstore.New(backendfake.NewFakeBackend())
	require.NoError(t, err)
	client, err := auth.NewClient(baseURL, store)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), apitest.DefaultEmail, apitest.DefaultPassword)
	require.ErrorIs(t, err, auth.ErrAuthentication)
	require.Equal(t, "Login failed", err.Error())
}

func TestLogin_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accessToken":"only-access"}`))
	}))
	t.Cleanup(server.Close)

	store, err := tokenstore.New(backendfake.NewFakeBackend())
	require.NoError(t, err)
	client, err := auth.NewClient(server.URL, store)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), apitest.DefaultEmail, apitest.DefaultPassword)
	require.ErrorIs(t, err, auth.ErrAuthentication)
	require.ErrorIs(t, err, apperrors.ErrMalformedTokens)
	require.False(t, client.IsAuthenticated())
}

func TestLogin_ServerErrorWithoutMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	store, err := tokenstore.New(backendfake.NewFakeBackend())
	require.NoError(t, err)
	client, err := auth.NewClient(server.URL, store)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), apitest.DefaultEmail, apitest.DefaultPassword)
	var authErr *auth.AuthenticationError
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, http.StatusInternalServerError, authErr.Status)
	require.Equal(t, "Login failed", authErr.Message)
	require.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRefresh_RotatesTokens(t *testing.T) {
	f := setupTestFixture(t)
	session := f.login(t)

	access, err := f.client.Refresh(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, session.AccessToken, access)

	stored, ok := f.store.Session()
	require.True(t, ok)
	require.Equal(t, access, stored.AccessToken)
	require.NotEqual(t, session.RefreshToken, stored.RefreshToken)
	require.Equal(t, session.User, stored.User)
	require.EqualValues(t, 1, f.server.RefreshCalls())
}

func TestRefresh_NoRefreshTokenSkipsNetwork(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.client.Refresh(context.Background())
	require.ErrorIs(t, err, auth.ErrSessionExpired)
	require.ErrorIs(t, err, apperrors.ErrNoRefreshToken)
	require.Equal(t, "Session expired. Please login again", err.Error())
	require.EqualValues(t, 0, f.server.RefreshCalls())
}

func TestRefresh_RejectedClearsSession(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.server.FailRefresh(true)

	_, err := f.client.Refresh(context.Background())
	var expired *auth.SessionExpiredError
	require.True(t, errors.As(err, &expired))

	require.False(t, f.client.IsAuthenticated())
	_, ok := f.store.GetRefreshToken()
	require.False(t, ok)
	_, ok = f.store.GetProfile()
	require.False(t, ok)
}

func TestRefresh_RevokedTokenClearsSession(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.server.RevokeRefreshTokens()

	_, err := f.client.Refresh(context.Background())
	require.ErrorIs(t, err, auth.ErrSessionExpired)
	require.False(t, f.client.IsAuthenticated())
}

func TestLogout_LocalOnlyByDefault(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	require.NoError(t, f.client.Logout(context.Background()))
	require.False(t, f.client.IsAuthenticated())
	require.EqualValues(t, 0, f.server.LogoutCalls())

	// Logging out twice is fine.
	require.NoError(t, f.client.Logout(context.Background()))
}

func TestLogout_RevokesWhenEnabled(t *testing.T) {
	f := setupTestFixture(t, auth.WithRevokeOnLogout(true))
	f.login(t)

	require.NoError(t, f.client.Logout(context.Background()))
	require.EqualValues(t, 1, f.server.LogoutCalls())
	require.False(t, f.client.IsAuthenticated())
}

func TestLogout_RevokeFailureStillClears(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	store, err := tokenstore.New(backendfake.NewFakeBackend())
	require.NoError(t, err)
	require.NoError(t, store.SetSession("access", "refresh", sessions.Profile{ID: "admin-1"}))
	client, err := auth.NewClient(baseURL, store, auth.WithRevokeOnLogout(true))
	require.NoError(t, err)

	require.NoError(t, client.Logout(context.Background()))
	require.False(t, client.IsAuthenticated())
}
