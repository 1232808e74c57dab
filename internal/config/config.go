package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type APIConfig interface {
	GetAPIURL() string
	GetAdminAPIURL() string
	GetAssetBaseURL() string
	GetRequestTimeout() time.Duration
}

type SessionConfig interface {
	GetSessionFile() string
	GetRefreshTimeout() time.Duration
	GetLoginEntryPoint() string
	GetLoginIdentifier() string
	GetLoginPassword() string
	GetRevokeOnLogout() bool
}

type mainConfig struct {
	EnvVars
	API
	Session
}

func New() Config {
	return mainConfig{}
}
