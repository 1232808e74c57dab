package apitest

import (
	"net/http"
	"strings"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// admin wraps handlers that need a currently valid bearer token.
func (s *Server) admin(h http.HandlerFunc) http.HandlerFunc {
	return ChainMiddleware(h, s.RecoverMiddleware, s.RequireBearer)
}

// RecordMiddleware keeps a copy of every request's method, path and auth headers.
func (s *Server) RecordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			ContentType:   r.Header.Get("Content-Type"),
			Cookie:        r.Header.Get("Cookie"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next(w, r)
	}
}

// RequireBearer rejects requests without a live access token. While a HoldUnauthorized
// barrier is armed, rejected requests wait for each other before answering.
func (s *Server) RequireBearer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || !s.accessValid(token) {
			s.mu.Lock()
			b := s.barrier
			s.mu.Unlock()
			if b != nil && b.arrive() {
				s.mu.Lock()
				if s.barrier == b && b.full() {
					s.barrier = nil
				}
				s.mu.Unlock()
			}
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		next(w, r)
	}
}
