package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	sessionFileVar    = "VENTA_SESSION_FILE"
	refreshTimeoutVar = "VENTA_REFRESH_TIMEOUT"
	revokeOnLogoutVar = "VENTA_REVOKE_ON_LOGOUT"
	loginHintVar      = "VENTA_LOGIN_HINT"
	identifierVar     = "VENTA_USER"
	passwordVar       = "VENTA_PASSWORD"
)

type Session struct{}

var _ SessionConfig = Session{}

// GetSessionFile returns where the cached tokens and profile are persisted between runs.
func (Session) GetSessionFile() string {
	if path := GetEnv(sessionFileVar, ""); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "venta", "session.json")
}

func (Session) GetRefreshTimeout() time.Duration {
	return GetEnvDuration(refreshTimeoutVar, 10*time.Second)
}

// GetLoginEntryPoint is where an admin whose session expired is sent to log in again.
func (Session) GetLoginEntryPoint() string {
	return GetEnv(loginHintVar, "ventactl login")
}

// GetLoginIdentifier and GetLoginPassword let scripts log in without prompting.
func (Session) GetLoginIdentifier() string {
	return GetEnv(identifierVar, "")
}

func (Session) GetLoginPassword() string {
	return GetEnv(passwordVar, "")
}

func (Session) GetRevokeOnLogout() bool {
	return GetEnvBool(revokeOnLogoutVar, false) // server-side revocation is opt-in
}
