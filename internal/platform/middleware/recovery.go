package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/records/internal/platform/apperr"
	"github.com/clinic/records/internal/platform/auth"
)

const maxStackBytes = 8 << 10

// Recovery converts a handler panic into an apperr.ErrInternal error. The
// error handler renders it as a plain 500 and Logger, when mounted outside
// Recovery, records the request. The panic value and stack are logged here
// and never reach the client.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				stack := make([]byte, maxStackBytes)
				stack = stack[:runtime.Stack(stack, false)]

				rid, _ := c.Get("request_id").(string)
				evt := logger.Error().
					Str("request_id", rid).
					Str("method", c.Request().Method).
					Str("path", c.Request().URL.Path).
					Str("panic", fmt.Sprint(r)).
					Bytes("stack", stack)
				if id, ok := auth.IdentityFrom(c); ok {
					evt = evt.Str("account_id", id.AccountID.String())
				}
				evt.Msg("panic recovered")

				err = fmt.Errorf("%w: panic: %v", apperr.ErrInternal, r)
			}()
			return next(c)
		}
	}
}
