// Package httpx holds request helpers shared by the domain handlers.
package httpx

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinic/records/internal/platform/apperr"
)

// PathUUID parses the named path parameter. A malformed id names no record,
// so it is reported as not found.
func PathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.Newf(apperr.ErrNotFound, "not found")
	}
	return id, nil
}
