package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/records/internal/platform/auth"
)

// Logger writes one structured line per request. Requests that failed with an
// error are logged at warn for 4xx and error for everything else.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			rid, _ := c.Get("request_id").(string)
			status := c.Response().Status
			if err != nil {
				status, _ = renderError(err)
			}

			evt := logger.Info()
			switch {
			case err != nil && status < 500:
				evt = logger.Warn().Err(err)
			case err != nil:
				evt = logger.Error().Err(err)
			}

			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())
			if id, ok := auth.IdentityFrom(c); ok {
				evt = evt.Str("account_id", id.AccountID.String())
			}
			evt.Msg("request")

			return err
		}
	}
}
