package tokenstore

import (
	"encoding/json"

	"github.com/jrsteele09/venta-admin/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Slot names, shared with the web console so a session file can be inspected side by side.
const (
	AccessTokenKey  = "ventaAccessToken"
	RefreshTokenKey = "ventaRefreshToken"
	ProfileKey      = "ventaUser"
)

// Store owns the persisted session: access token, refresh token and cached profile.
// Reads fail soft (absent) and never panic; only the auth client should write to it.
type Store struct {
	backend Backend
	log     zerolog.Logger
}

type StoreOption func(*Store)

func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

func New(backend Backend, options ...StoreOption) (*Store, error) {
	if backend == nil {
		return nil, errors.New("[tokenstore.New] backend is required")
	}
	s := &Store{backend: backend, log: zerolog.Nop()}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// SetSession overwrites all three slots. Tokens are opaque and not validated.
// If any slot can't be written the store is cleared, so no partial session is left behind.
func (s *Store) SetSession(accessToken, refreshToken string, profile sessions.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return errors.Wrap(err, "[Store.SetSession] marshal profile")
	}
	if err := s.SetTokens(accessToken, refreshToken); err != nil {
		return s.rollback(errors.Wrap(err, "[Store.SetSession]"))
	}
	if err := s.backend.Set(ProfileKey, string(raw)); err != nil {
		return s.rollback(errors.Wrap(err, "[Store.SetSession] profile"))
	}
	return nil
}

func (s *Store) rollback(cause error) error {
	if err := s.Clear(); err != nil {
		s.log.Error().Err(err).Msg("tokenstore: rollback of partial session failed")
	}
	return cause
}

// SetTokens replaces both tokens and leaves the cached profile alone.
func (s *Store) SetTokens(accessToken, refreshToken string) error {
	if err := s.backend.Set(AccessTokenKey, accessToken); err != nil {
		return errors.Wrap(err, "[Store.SetTokens] access token")
	}
	if err := s.backend.Set(RefreshTokenKey, refreshToken); err != nil {
		return errors.Wrap(err, "[Store.SetTokens] refresh token")
	}
	return nil
}

func (s *Store) GetAccessToken() (string, bool) {
	return s.get(AccessTokenKey)
}

func (s *Store) GetRefreshToken() (string, bool) {
	return s.get(RefreshTokenKey)
}

// GetProfile returns the cached profile, or absent when the slot is empty or not well-formed.
func (s *Store) GetProfile() (*sessions.Profile, bool) {
	raw, ok := s.get(ProfileKey)
	if !ok {
		return nil, false
	}
	var profile sessions.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		s.log.Warn().Err(err).Msg("tokenstore: ignoring malformed profile")
		return nil, false
	}
	return &profile, true
}

// Session assembles the stored slots. It is absent unless both tokens are present.
func (s *Store) Session() (*sessions.Session, bool) {
	session := &sessions.Session{}
	session.AccessToken, _ = s.GetAccessToken()
	session.RefreshToken, _ = s.GetRefreshToken()
	if !session.Valid() {
		return nil, false
	}
	if profile, ok := s.GetProfile(); ok {
		session.User = *profile
	}
	return session, true
}

// Clear removes all three slots. It keeps going past a failing slot and reports the first error.
func (s *Store) Clear() error {
	var firstErr error
	for _, key := range []string{AccessTokenKey, RefreshTokenKey, ProfileKey} {
		if err := s.backend.Delete(key); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "[Store.Clear] %s", key)
		}
	}
	return firstErr
}

func (s *Store) get(key string) (string, bool) {
	value, found, err := s.backend.Get(key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("tokenstore: backend read failed")
		return "", false
	}
	if !found || value == "" {
		return "", false
	}
	return value, true
}
