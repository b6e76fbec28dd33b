package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/records/internal/platform/apperr"
)

// ErrorHandler renders errors returned by handlers as JSON. Validation errors
// become a field map, everything else a {"detail": ...} body. Unclassified
// errors are logged and reported as 500 without leaking their text.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := renderError(err)
		if status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}
		if status == http.StatusUnauthorized {
			c.Response().Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}

func detail(msg string) map[string]interface{} {
	return map[string]interface{}{"detail": msg}
}

func renderError(err error) (int, interface{}) {
	if v, ok := apperr.IsValidation(err); ok {
		return http.StatusBadRequest, v.Fields
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		// The binder wraps body read failures, such as an exceeded body limit,
		// in a 400. Report the inner status instead.
		var inner *echo.HTTPError
		if errors.As(he.Internal, &inner) {
			he = inner
		}
		msg, ok := he.Message.(string)
		if !ok {
			msg = fmt.Sprintf("%v", he.Message)
		}
		return he.Code, detail(msg)
	}

	switch {
	case apperr.IsUnauthorized(err):
		return http.StatusUnauthorized, detail(apperr.Detail(err, apperr.ErrUnauthorized.Error()))
	case apperr.IsForbidden(err):
		return http.StatusForbidden, detail(apperr.Detail(err, apperr.ErrForbidden.Error()))
	case apperr.IsNotFound(err):
		return http.StatusNotFound, detail(apperr.Detail(err, "not found"))
	case apperr.IsDuplicate(err):
		return http.StatusBadRequest, map[string][]string{
			apperr.NonFieldErrors: {apperr.Detail(err, apperr.ErrDuplicate.Error())},
		}
	case errors.Is(err, apperr.ErrInvalidReference):
		return http.StatusBadRequest, detail(apperr.Detail(err, apperr.ErrInvalidReference.Error()))
	case errors.Is(err, apperr.ErrCheckViolation):
		return http.StatusBadRequest, detail(apperr.Detail(err, apperr.ErrCheckViolation.Error()))
	}

	return http.StatusInternalServerError, detail(apperr.ErrInternal.Error())
}
