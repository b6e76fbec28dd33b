package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/records/internal/platform/auth"
	"github.com/clinic/records/internal/platform/middleware"
)

const testAccountHeader = "X-Test-Account"

// newTestEcho wires the handlers behind a stand-in for the JWT middleware
// that takes the caller's account id from a header.
func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(zerolog.Nop())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := c.Request().Header.Get(testAccountHeader); raw != "" {
				auth.SetIdentity(c, auth.Identity{AccountID: uuid.MustParse(raw)})
			}
			return next(c)
		}
	})
	NewHandler(newTestService()).RegisterRoutes(e.Group(""))
	return e
}

func do(e *echo.Echo, caller uuid.UUID, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if caller != uuid.Nil {
		req.Header.Set(testAccountHeader, caller.String())
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createPatient(t *testing.T, e *echo.Echo, caller uuid.UUID, body string) map[string]interface{} {
	t.Helper()
	rec := do(e, caller, http.MethodPost, "/patients", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create patient: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode patient: %v", err)
	}
	return out
}

func TestPatientHandler_CreateAndGet(t *testing.T) {
	e := newTestEcho()
	alice, bob := uuid.New(), uuid.New()

	p := createPatient(t, e, alice, `{"name":"Bob","age":40,"gender":"M"}`)
	owner, ok := p["owner"].(map[string]interface{})
	if !ok || owner["id"] != alice.String() {
		t.Errorf("expected nested owner %s, got %v", alice, p["owner"])
	}
	if _, leaked := p["owner_id"]; leaked {
		t.Error("owner_id must not be serialized")
	}
	id := p["id"].(string)

	if rec := do(e, alice, http.MethodGet, "/patients/"+id, ""); rec.Code != http.StatusOK {
		t.Errorf("owner get: expected 200, got %d", rec.Code)
	}
	if rec := do(e, bob, http.MethodGet, "/patients/"+id, ""); rec.Code != http.StatusNotFound {
		t.Errorf("other owner get: expected 404, got %d", rec.Code)
	}
	if rec := do(e, alice, http.MethodGet, "/patients/not-a-uuid", ""); rec.Code != http.StatusNotFound {
		t.Errorf("bad id: expected 404, got %d", rec.Code)
	}
}

func TestPatientHandler_Unauthenticated(t *testing.T) {
	e := newTestEcho()
	rec := do(e, uuid.Nil, http.MethodGet, "/patients", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("expected WWW-Authenticate header")
	}
}

func TestPatientHandler_CreateNegativeAge(t *testing.T) {
	e := newTestEcho()
	alice := uuid.New()

	rec := do(e, alice, http.MethodPost, "/patients", `{"name":"Bob","age":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	var fields map[string][]string
	json.Unmarshal(rec.Body.Bytes(), &fields)
	if len(fields["age"]) == 0 {
		t.Errorf("expected age error, got %s", rec.Body.String())
	}

	rec = do(e, alice, http.MethodGet, "/patients", "")
	var page struct {
		Count int `json:"count"`
	}
	json.Unmarshal(rec.Body.Bytes(), &page)
	if page.Count != 0 {
		t.Errorf("expected no patients after rejected create, got %d", page.Count)
	}
}

func TestPatientHandler_ListPaginated(t *testing.T) {
	e := newTestEcho()
	alice, bob := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		createPatient(t, e, alice, `{"name":"P","age":1}`)
	}
	createPatient(t, e, bob, `{"name":"Other","age":1}`)

	rec := do(e, alice, http.MethodGet, "/patients?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var page struct {
		Count    int                      `json:"count"`
		Next     *string                  `json:"next"`
		Previous *string                  `json:"previous"`
		Results  []map[string]interface{} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Count != 3 || len(page.Results) != 2 {
		t.Errorf("expected 2 of 3 results, got %d of %d", len(page.Results), page.Count)
	}
	if page.Next == nil || *page.Next != "/patients?limit=2&offset=2" {
		t.Errorf("unexpected next link %v", page.Next)
	}
	if page.Previous != nil {
		t.Errorf("expected no previous link, got %s", *page.Previous)
	}
}

func TestPatientHandler_UpdateAndDelete(t *testing.T) {
	e := newTestEcho()
	alice, bob := uuid.New(), uuid.New()
	id := createPatient(t, e, alice, `{"name":"Bob","age":40}`)["id"].(string)

	if rec := do(e, bob, http.MethodPatch, "/patients/"+id, `{"age":1}`); rec.Code != http.StatusForbidden {
		t.Errorf("non-owner patch: expected 403, got %d", rec.Code)
	}
	if rec := do(e, alice, http.MethodPut, "/patients/"+id, `{"age":41}`); rec.Code != http.StatusBadRequest {
		t.Errorf("put without name: expected 400, got %d", rec.Code)
	}

	rec := do(e, alice, http.MethodPatch, "/patients/"+id, `{"age":41}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner patch: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var p map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &p)
	if p["age"] != float64(41) || p["name"] != "Bob" {
		t.Errorf("unexpected patient after patch: %v", p)
	}

	if rec := do(e, bob, http.MethodDelete, "/patients/"+id, ""); rec.Code != http.StatusForbidden {
		t.Errorf("non-owner delete: expected 403, got %d", rec.Code)
	}
	if rec := do(e, alice, http.MethodDelete, "/patients/"+id, ""); rec.Code != http.StatusNoContent {
		t.Errorf("owner delete: expected 204, got %d", rec.Code)
	}
	if rec := do(e, alice, http.MethodGet, "/patients/"+id, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestDoctorHandler_SharedDirectory(t *testing.T) {
	e := newTestEcho()
	alice, bob := uuid.New(), uuid.New()

	rec := do(e, alice, http.MethodPost, "/doctors", `{"name":"Dr. Smith","specialty":"Cardiology","email":"smith@clinic.org"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create doctor: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var d map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &d)
	id := d["id"].(string)

	if rec := do(e, bob, http.MethodGet, "/doctors", ""); rec.Code != http.StatusOK {
		t.Errorf("list doctors: expected 200, got %d", rec.Code)
	}
	if rec := do(e, bob, http.MethodPatch, "/doctors/"+id, `{"contact":"555-0100"}`); rec.Code != http.StatusOK {
		t.Errorf("patch by another account: expected 200, got %d", rec.Code)
	}
	if rec := do(e, bob, http.MethodPost, "/doctors", `{"name":"Dr. X","email":"nope"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad email: expected 400, got %d", rec.Code)
	}
	if rec := do(e, bob, http.MethodDelete, "/doctors/"+id, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete by another account: expected 204, got %d", rec.Code)
	}
}

func TestPatientHandler_RejectsExplicitNull(t *testing.T) {
	e := newTestEcho()
	alice := uuid.New()

	rec := do(e, alice, http.MethodPost, "/patients", `{"name":"Bob","age":40,"notes":null}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("create with null notes: expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"notes":["This field may not be null."]}` {
		t.Errorf("unexpected body %s", got)
	}

	p := createPatient(t, e, alice, `{"name":"Bob","age":40}`)
	id := p["id"].(string)

	rec = do(e, alice, http.MethodPatch, "/patients/"+id, `{"name":null,"age":null}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("patch with nulls: expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	var fields map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &fields); err != nil {
		t.Fatalf("decode errors: %v", err)
	}
	for _, f := range []string{"name", "age"} {
		if len(fields[f]) != 1 || fields[f][0] != "This field may not be null." {
			t.Errorf("%s: expected a single null error, got %v", f, fields[f])
		}
	}

	rec = do(e, alice, http.MethodGet, "/patients/"+id, "")
	var got map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode patient: %v", err)
	}
	if got["name"] != "Bob" || got["age"] != float64(40) {
		t.Errorf("rejected patch must leave the record unchanged, got %v", got)
	}
}
