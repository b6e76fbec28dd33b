package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinic/records/internal/platform/apperr"
)

func TestPathUUID(t *testing.T) {
	e := echo.New()
	want := uuid.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(want.String())
	got, err := PathUUID(c, "id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("42")
	if _, err := PathUUID(c, "id"); !apperr.IsNotFound(err) {
		t.Errorf("expected not found for malformed id, got %v", err)
	}
}
