package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that bypass authentication: health checks and
// the account endpoints that hand out tokens.
var publicPaths = map[string]bool{
	"/health":             true,
	"/health/db":          true,
	"/auth/register":      true,
	"/auth/login":         true,
	"/auth/token/refresh": true,
}

// AuthSkipper returns true for requests whose path should skip authentication.
// It checks the raw URL path too so a request still matches before routing
// has filled in c.Path().
func AuthSkipper(c echo.Context) bool {
	if IsPublicPath(c.Path()) {
		return true
	}
	return IsPublicPath(c.Request().URL.Path)
}

// IsPublicPath reports whether path is public. A trailing slash is ignored.
func IsPublicPath(path string) bool {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return publicPaths[path]
}
