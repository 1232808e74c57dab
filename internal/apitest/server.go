// Package apitest runs an in-process fake of the Venta admin API for tests.
//
// It issues HS256 JWT access tokens and opaque rotating refresh tokens, checks bcrypt
// password hashes, and serves the catalog, custom-order and contact endpoints from memory.
// Access tokens can be expired server-side at will and the refresh endpoint can be forced
// to fail, which is what the refresh-and-retry tests drive.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BasePath is where the admin API is mounted on the test server.
	BasePath = "/api/admin"

	DefaultEmail    = "alice@example.com"
	DefaultUsername = "alice"
	DefaultPassword = "s3cret-Passw0rd"
	DefaultAdminID  = "admin-1"

	// SessionCookie is set alongside the tokens on login and refresh.
	SessionCookie = "venta_sid"
)

// Admin is an account that can log in.
type Admin struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	passwordHash []byte
}

// RecordedRequest is what the server saw for one incoming call.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	ContentType   string
	Cookie        string
}

type Server struct {
	*httptest.Server

	signer *hmacSigner

	mu            sync.Mutex
	admins        []*Admin
	validAccess   map[string]string // access token -> admin id
	refreshTokens map[string]string // refresh token -> admin id
	requests      []RecordedRequest
	failRefresh   bool
	refreshDelay  time.Duration
	barrier       *barrier
	products      []*Product
	customs       []*CustomProduct
	inquiries     []*Inquiry
	contacts      []*Contact
	seq           int

	loginCalls   atomic.Int64
	refreshCalls atomic.Int64
	logoutCalls  atomic.Int64
}

// NewServer starts the fake API with the default admin and a small fixture catalog.
// The server is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		signer:        newHMACSigner(uuid.NewString(), 15*time.Minute),
		validAccess:   make(map[string]string),
		refreshTokens: make(map[string]string),
	}
	s.AddAdmin(DefaultAdminID, DefaultUsername, DefaultEmail, DefaultPassword)
	s.seed()

	mux := http.NewServeMux()
	s.routes(mux)
	s.Server = httptest.NewServer(s.RecordMiddleware(mux))
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the admin API root to hand to the clients under test.
func (s *Server) BaseURL() string {
	return s.URL + BasePath
}

func (s *Server) AddAdmin(id, username, email, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins = append(s.admins, &Admin{ID: id, Username: username, Email: email, passwordHash: hash})
}

// IssueSession mints a valid token pair for the admin without going through /auth/login.
func (s *Server) IssueSession(adminID string) (accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(adminID)
}

// ExpireAccessTokens invalidates every access token issued so far, as if they all timed out.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validAccess = make(map[string]string)
}

// RevokeRefreshTokens invalidates every refresh token issued so far.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens = make(map[string]string)
}

// FailRefresh makes /auth/refresh answer 401 regardless of the token presented.
func (s *Server) FailRefresh(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh = fail
}

// SetRefreshDelay slows /auth/refresh down so concurrent callers overlap with it.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

// HoldUnauthorized makes the next n requests that are about to be rejected with 401 wait
// until all n have arrived, so they fail together.
func (s *Server) HoldUnauthorized(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.barrier = newBarrier(n)
}

func (s *Server) LoginCalls() int64   { return s.loginCalls.Load() }
func (s *Server) RefreshCalls() int64 { return s.refreshCalls.Load() }
func (s *Server) LogoutCalls() int64  { return s.logoutCalls.Load() }

// Requests returns the calls seen so far, in arrival order.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo filters Requests by method and path (relative to BasePath).
func (s *Server) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == BasePath+path {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) accessValid(token string) bool {
	s.mu.Lock()
	_, ok := s.validAccess[token]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return s.signer.verify(token) == nil
}

func (s *Server) issueLocked(adminID string) (string, string) {
	access, err := s.signer.createAccessToken(adminID)
	if err != nil {
		panic(err)
	}
	refresh := newRefreshToken()
	s.validAccess[access] = adminID
	s.refreshTokens[refresh] = adminID
	return access, refresh
}

func (s *Server) findAdminLocked(email, username string) *Admin {
	for _, a := range s.admins {
		if (email != "" && a.Email == email) || (username != "" && a.Username == username) {
			return a
		}
	}
	return nil
}

func setSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: newRefreshToken(), Path: "/", HttpOnly: true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// barrier releases its waiters once n have arrived.
type barrier struct {
	n       int
	mu      sync.Mutex
	arrived int
	ready   chan struct{}
}

func newBarrier(n int) *barrier {
	return &barrier{n: n, ready: make(chan struct{})}
}

// arrive blocks until the barrier is full; late arrivals pass straight through.
// It reports whether the caller took part in the barrier.
func (b *barrier) arrive() bool {
	b.mu.Lock()
	if b.arrived >= b.n {
		b.mu.Unlock()
		return false
	}
	b.arrived++
	if b.arrived == b.n {
		close(b.ready)
	}
	b.mu.Unlock()

	select {
	case <-b.ready:
	case <-time.After(5 * time.Second):
	}
	return true
}

func (b *barrier) full() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.arrived >= b.n
}
