package config

import (
	"strings"
	"time"
)

const (
	apiURLVar         = "VENTA_API_URL"
	assetURLVar       = "VENTA_ASSET_URL"
	requestTimeoutVar = "VENTA_REQUEST_TIMEOUT"

	adminPathPrefix = "/admin"
)

type API struct{}

var _ APIConfig = API{}

// GetAPIURL returns the API root, e.g. "https://shop.example.com/api", without a trailing slash.
func (API) GetAPIURL() string {
	return strings.TrimRight(GetEnv(apiURLVar, "http://localhost:5000/api"), "/")
}

// GetAdminAPIURL is the base every admin endpoint (auth, products, contacts...) is resolved against.
func (a API) GetAdminAPIURL() string {
	return a.GetAPIURL() + adminPathPrefix
}

// GetAssetBaseURL is the host uploaded images are served from. It is not under /api.
func (API) GetAssetBaseURL() string {
	return strings.TrimRight(GetEnv(assetURLVar, "http://localhost:5000"), "/")
}

func (API) GetRequestTimeout() time.Duration {
	return GetEnvDuration(requestTimeoutVar, 30*time.Second)
}
