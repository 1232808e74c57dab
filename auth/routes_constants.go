package auth

// Auth endpoint paths, relative to the admin API base URL
const (
	RouteLogin   = "/auth/login"
	RouteRefresh = "/auth/refresh"
	RouteLogout  = "/auth/logout"
)
