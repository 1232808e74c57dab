package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/venta-admin/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	t.Setenv("VENTA_API_URL", "")
	t.Setenv("VENTA_ASSET_URL", "")
	t.Setenv("VENTA_REQUEST_TIMEOUT", "")
	t.Setenv("VENTA_REFRESH_TIMEOUT", "")
	t.Setenv("VENTA_REVOKE_ON_LOGOUT", "")
	t.Setenv("ENV", "")
	t.Setenv("VENTA_LOGIN_HINT", "")
	t.Setenv("VENTA_PASSWORD", "")

	c := config.New()
	require.Equal(t, "http://localhost:5000/api", c.GetAPIURL())
	require.Equal(t, "http://localhost:5000/api/admin", c.GetAdminAPIURL())
	require.Equal(t, "http://localhost:5000", c.GetAssetBaseURL())
	require.Equal(t, 30*time.Second, c.GetRequestTimeout())
	require.Equal(t, 10*time.Second, c.GetRefreshTimeout())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "ventactl login", c.GetLoginEntryPoint())
	require.Empty(t, c.GetLoginPassword())
	require.False(t, c.GetRevokeOnLogout())
}

func TestConfig_FromEnv(t *testing.T) {
	sessionFile := filepath.Join(t.TempDir(), "s.json")
	t.Setenv("VENTA_API_URL", "https://shop.example.com/api/")
	t.Setenv("VENTA_REQUEST_TIMEOUT", "5s")
	t.Setenv("VENTA_REFRESH_TIMEOUT", "not-a-duration")
	t.Setenv("VENTA_SESSION_FILE", sessionFile)
	t.Setenv("VENTA_REVOKE_ON_LOGOUT", "true")
	t.Setenv("VENTA_USER", "alice")

	c := config.New()
	require.Equal(t, "https://shop.example.com/api/admin", c.GetAdminAPIURL())
	require.Equal(t, 5*time.Second, c.GetRequestTimeout())
	require.Equal(t, 10*time.Second, c.GetRefreshTimeout())
	require.Equal(t, sessionFile, c.GetSessionFile())
	require.True(t, c.GetRevokeOnLogout())
	require.Equal(t, "alice", c.GetLoginIdentifier())
}
