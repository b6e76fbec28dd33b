package account

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/records/internal/platform/middleware"
)

func newTestEcho() (*echo.Echo, *Service) {
	svc, _ := newTestService()
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(zerolog.Nop())
	NewHandler(svc).RegisterRoutes(e.Group(""))
	return e, svc
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_RegisterLoginRefresh(t *testing.T) {
	e, _ := newTestEcho()

	rec := doJSON(e, http.MethodPost, "/auth/register", `{"username":"alice","email":"a@x.com","password":"Str0ng!pw"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var msg map[string]string
	json.Unmarshal(rec.Body.Bytes(), &msg)
	if msg["message"] != "User created successfully." {
		t.Errorf("unexpected register body %s", rec.Body.String())
	}

	rec = doJSON(e, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"Str0ng!pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var pair map[string]string
	json.Unmarshal(rec.Body.Bytes(), &pair)
	if pair["access"] == "" || pair["refresh"] == "" {
		t.Fatalf("expected access and refresh tokens, got %s", rec.Body.String())
	}

	rec = doJSON(e, http.MethodPost, "/auth/token/refresh", `{"refresh":"`+pair["refresh"]+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var refreshed map[string]string
	json.Unmarshal(rec.Body.Bytes(), &refreshed)
	if refreshed["access"] == "" {
		t.Error("expected new access token")
	}
}

func TestHandler_RegisterValidation(t *testing.T) {
	e, _ := newTestEcho()

	rec := doJSON(e, http.MethodPost, "/auth/register", `{"username":"alice","email":"bad","password":"short"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var fields map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &fields); err != nil {
		t.Fatalf("expected field map, got %s", rec.Body.String())
	}
	if len(fields["email"]) == 0 || len(fields["password"]) == 0 {
		t.Errorf("expected email and password errors, got %v", fields)
	}
}

func TestHandler_LoginFailures(t *testing.T) {
	e, _ := newTestEcho()
	doJSON(e, http.MethodPost, "/auth/register", `{"username":"alice","email":"a@x.com","password":"Str0ng!pw"}`)

	rec := doJSON(e, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"nope-nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), msgBadCredentials) {
		t.Errorf("expected credentials message, got %s", rec.Body.String())
	}

	rec = doJSON(e, http.MethodPost, "/auth/login", `{"email":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing fields: expected 400, got %d", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/auth/login", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: expected 400, got %d", rec.Code)
	}
}

func TestHandler_RefreshInvalid(t *testing.T) {
	e, _ := newTestEcho()

	rec := doJSON(e, http.MethodPost, "/auth/token/refresh", `{"refresh":"not-a-token"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/auth/token/refresh", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing refresh, got %d", rec.Code)
	}
}
