package middleware

import (
	"github.com/labstack/echo/v4"
)

const hstsValue = "max-age=31536000; includeSubDomains"

// jsonAPIHeaders apply to every response. The API serves JSON only, so the
// content policy denies all resource loading, and patient records must not be
// stored by intermediaries.
var jsonAPIHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"X-XSS-Protection", "0"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "no-referrer"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
	{"Cache-Control", "no-store"},
}

// SecurityHeaders sets hardening headers on every response.
// Strict-Transport-Security is only sent when the server terminates TLS.
func SecurityHeaders(tlsEnabled bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for _, kv := range jsonAPIHeaders {
				h.Set(kv[0], kv[1])
			}
			if tlsEnabled {
				h.Set("Strict-Transport-Security", hstsValue)
			}
			return next(c)
		}
	}
}
