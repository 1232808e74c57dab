package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/venta-admin/apiclient"
	"github.com/jrsteele09/venta-admin/auth"
	"github.com/jrsteele09/venta-admin/internal/apitest"
	"github.com/jrsteele09/venta-admin/internal/metrics"
	"github.com/jrsteele09/venta-admin/tokenstore"
	"github.com/jrsteele09/venta-admin/tokenstore/backendfake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	server  *apitest.Server
	store   *tokenstore.Store
	auth    *auth.Client
	client  *apiclient.Client
	metrics *metrics.Pipeline
	expired atomic.Int64
	lastErr atomic.Value
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{server: apitest.NewServer(t)}

	var err error
	f.store, err = tokenstore.New(backendfake.NewFakeBackend())
	require.NoError(t, err)
	f.auth, err = auth.NewClient(f.server.BaseURL(), f.store)
	require.NoError(t, err)

	f.metrics = metrics.NewPipeline(prometheus.NewRegistry())
	f.client, err = apiclient.New(f.server.BaseURL(), f.store, f.auth,
		apiclient.WithMetrics(f.metrics),
		apiclient.WithOnSessionExpired(func(_ context.Context, err error) {
			f.expired.Add(1)
			f.lastErr.Store(err)
		}),
	)
	require.NoError(t, err)
	return f
}

func (f *testFixture) login(t *testing.T) string {
	t.Helper()
	session, err := f.auth.Login(context.Background(), apitest.DefaultEmail, apitest.DefaultPassword)
	require.NoError(t, err)
	return session.AccessToken
}

func TestNew_Validation(t *testing.T) {
	store, err := tokenstore.New(backendfake.NewFakeBackend())
	require.NoError(t, err)

	_, err = apiclient.New("", store, &countingRefresher{})
	require.Error(t, err)
	_, err = apiclient.New("http://localhost", nil, &countingRefresher{})
	require.Error(t, err)
	_, err = apiclient.New("http://localhost", store, nil)
	require.Error(t, err)
}

func TestDo_AttachesBearerToken(t *testing.T) {
	f := setupTestFixture(t)
	access := f.login(t)

	var products []apitest.Product
	require.NoError(t, f.client.GetJSON(context.Background(), "/products", nil, &products))
	require.Len(t, products, apitest.SeedProducts)

	calls := f.server.RequestsTo(http.MethodGet, "/products")
	require.Len(t, calls, 1)
	require.Equal(t, "Bearer "+access, calls[0].Authorization)
	require.NotEmpty(t, calls[0].RequestID)
}

func TestDo_NoTokenSendsAnonymously(t *testing.T) {
	f := setupTestFixture(t)

	resp, err := f.client.Post(context.Background(), "/inquiries", map[string]any{
		"name":        "Bob",
		"email":       "bob@example.com",
		"description": "A quote please",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.Status)

	calls := f.server.RequestsTo(http.MethodPost, "/inquiries")
	require.Len(t, calls, 1)
	require.Empty(t, calls[0].Authorization)
}

func TestDo_ProtectedWithoutSessionExpiresWithoutRefreshCall(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.client.Get(context.Background(), "/products", nil)
	require.ErrorIs(t, err, auth.ErrSessionExpired)
	require.EqualValues(t, 0, f.server.RefreshCalls())
	require.EqualValues(t, 1, f.expired.Load())
}

func TestDo_RefreshesAndRetriesOnce(t *testing.T) {
	f := setupTestFixture(t)
	oldAccess := f.login(t)
	f.server.ExpireAccessTokens()

	var products []apitest.Product
	require.NoError(t, f.client.GetJSON(context.Background(), "/products", nil, &products))
	require.Len(t, products, apitest.SeedProducts)

	require.EqualValues(t, 1, f.server.RefreshCalls())
	require.EqualValues(t, 1, f.client.Refreshes())
	require.EqualValues(t, 0, f.expired.Load())

	calls := f.server.RequestsTo(http.MethodGet, "/products")
	require.Len(t, calls, 2)
	require.Equal(t, "Bearer "+oldAccess, calls[0].Authorization)
	newAccess, ok := f.store.GetAccessToken()
	require.True(t, ok)
	require.NotEqual(t, oldAccess, newAccess)
	require.Equal(t, "Bearer "+newAccess, calls[1].Authorization)
	require.Equal(t, calls[0].RequestID, calls[1].RequestID)

	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Requests.WithLabelValues(http.MethodGet, metrics.OutcomeSuccess)))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Refreshes.WithLabelValues(metrics.ResultSuccess)))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Retries))

	// The next call uses the rotated token straight away.
	_, err := f.client.Get(context.Background(), "/products", nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, f.server.RefreshCalls())
}

func TestDo_RefreshFailureExpiresSession(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.server.ExpireAccessTokens()
	f.server.FailRefresh(true)

	_, err := f.client.Get(context.Background(), "/products", nil)
	require.ErrorIs(t, err, auth.ErrSessionExpired)
	var expired *auth.SessionExpiredError
	require.True(t, errors.As(err, &expired))

	require.EqualValues(t, 1, f.expired.Load())
	require.ErrorIs(t, f.lastErr.Load().(error), auth.ErrSessionExpired)

	_, ok := f.store.GetAccessToken()
	require.False(t, ok)
	_, ok = f.store.GetRefreshToken()
	require.False(t, ok)
	_, ok = f.store.GetProfile()
	require.False(t, ok)

	require.Len(t, f.server.RequestsTo(http.MethodGet, "/products"), 1)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Requests.WithLabelValues(http.MethodGet, metrics.OutcomeSessionExpired)))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Refreshes.WithLabelValues(metrics.ResultFailure)))
}

func TestDo_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.server.ExpireAccessTokens()
	f.server.HoldUnauthorized(5)
	f.server.SetRefreshDelay(50 * time.Millisecond)

	const parallel = 5
	var wg sync.WaitGroup
	errs := make([]error, parallel)
	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.client.Get(context.Background(), "/products", nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, f.server.RefreshCalls())
	require.Len(t, f.server.RequestsTo(http.MethodGet, "/products"), 2*parallel)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Refreshes.WithLabelValues(metrics.ResultSuccess)))
	require.Equal(t, float64(parallel), testutil.ToFloat64(f.metrics.Retries))
}

func TestDo_ConcurrentRefreshFailureSharedByAll(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.server.ExpireAccessTokens()
	f.server.FailRefresh(true)
	f.server.HoldUnauthorized(3)
	f.server.SetRefreshDelay(50 * time.Millisecond)

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.client.Get(context.Background(), "/contacts", nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.ErrorIs(t, err, auth.ErrSessionExpired)
	}
	require.EqualValues(t, 1, f.server.RefreshCalls())
	require.False(t, f.auth.IsAuthenticated())
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Refreshes.WithLabelValues(metrics.ResultFailure)))
	// One refresh, but every waiting request reports the expiry to the hook.
	require.EqualValues(t, 3, f.expired.Load())
}

func TestDo_UpstreamErrorsAreNotRetried(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	_, err := f.client.Get(context.Background(), "/products/does-not-exist", nil)
	require.ErrorIs(t, err, apiclient.ErrUpstream)
	var upstream *apiclient.UpstreamError
	require.True(t, errors.As(err, &upstream))
	require.Equal(t, http.StatusNotFound, upstream.Status)
	require.Equal(t, "Product not found", upstream.Message)
	require.EqualValues(t, 0, f.server.RefreshCalls())
}

// countingRefresher hands out a fixed token and counts calls.
type countingRefresher struct {
	token string
	calls atomic.Int64
}

func (r *countingRefresher) Refresh(context.Context) (string, error) {
	r.calls.Add(1)
	return r.token, nil
}

type fixedTokens struct{ token string }

func (f fixedTokens) GetAccessToken() (string, bool) { return f.token, f.token != "" }

func TestDo_RetriedUnauthorizedIsFinal(t *testing.T) {
	var hits atomic.Int64
	var lastAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		lastAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Not allowed"}`))
	}))
	t.Cleanup(server.Close)

	refresher := &countingRefresher{token: "fresh"}
	client, err := apiclient.New(server.URL, fixedTokens{token: "stale"}, refresher)
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "/things", nil)
	var upstream *apiclient.UpstreamError
	require.True(t, errors.As(err, &upstream))
	require.Equal(t, http.StatusUnauthorized, upstream.Status)
	require.Equal(t, "Not allowed", upstream.Message)

	require.EqualValues(t, 1, refresher.calls.Load())
	require.EqualValues(t, 2, hits.Load())
	require.Equal(t, "Bearer fresh", lastAuth.Load())
}

func TestDo_NetworkErrorIsNotRetried(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	refresher := &countingRefresher{token: "fresh"}
	client, err := apiclient.New(baseURL, fixedTokens{token: "token"}, refresher)
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "/products", nil)
	require.ErrorIs(t, err, apiclient.ErrNetwork)
	var netErr *apiclient.NetworkError
	require.True(t, errors.As(err, &netErr))
	require.Equal(t, http.MethodGet, netErr.Method)
	require.EqualValues(t, 0, refresher.calls.Load())
}

func TestDo_FallbackMessageWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client, err := apiclient.New(server.URL, fixedTokens{}, &countingRefresher{})
	require.NoError(t, err)

	_, err = client.Delete(context.Background(), "/products/1")
	require.EqualError(t, err, "Request failed with status 503")
}

func TestDo_MultipartBodyReplayedOnRetry(t *testing.T) {
	type seen struct {
		title  string
		images []string
	}
	var mu sync.Mutex
	var attempts []seen
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		var names []string
		for _, fh := range r.MultipartForm.File["images"] {
			file, err := fh.Open()
			require.NoError(t, err)
			content, err := io.ReadAll(file)
			require.NoError(t, err)
			names = append(names, fh.Filename+":"+string(content))
		}
		mu.Lock()
		attempts = append(attempts, seen{title: r.FormValue("title"), images: names})
		first := len(attempts) == 1
		mu.Unlock()

		if first {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"_id": "prod-new"})
	}))
	t.Cleanup(server.Close)

	client, err := apiclient.New(server.URL, fixedTokens{token: "stale"}, &countingRefresher{token: "fresh"})
	require.NoError(t, err)

	form := apiclient.NewMultipartForm().AddField("title", "Widget")
	form.AddFile(apiclient.FormFile{Field: "images", FileName: "a.png", Content: strings.NewReader("AAA")})
	form.AddFile(apiclient.FormFile{Field: "images", FileName: "b.png", Content: strings.NewReader("BBB")})

	resp, err := client.Do(context.Background(), http.MethodPost, "/products", &apiclient.RequestOptions{Form: form})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.Status)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, attempts, 2)
	for _, a := range attempts {
		require.Equal(t, "Widget", a.title)
		require.Equal(t, []string{"a.png:AAA", "b.png:BBB"}, a.images)
	}
}

// blockingRefresher waits until released, so the caller's context can expire first.
type blockingRefresher struct {
	release chan struct{}
}

func (b *blockingRefresher) Refresh(ctx context.Context) (string, error) {
	select {
	case <-b.release:
		return "fresh", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestDo_CallerCancelWhileRefreshing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	var hookCalls atomic.Int64
	refresher := &blockingRefresher{release: make(chan struct{})}
	t.Cleanup(func() { close(refresher.release) })
	client, err := apiclient.New(server.URL, fixedTokens{token: "stale"}, refresher,
		apiclient.WithOnSessionExpired(func(context.Context, error) { hookCalls.Add(1) }),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = client.Get(ctx, "/products", nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.EqualValues(t, 0, hookCalls.Load())
}
