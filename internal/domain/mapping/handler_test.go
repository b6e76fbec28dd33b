package mapping

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

func newTestEcho(svc *Service, caller auth.Identity) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(zerolog.Nop())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth.SetIdentity(c, caller)
			return next(c)
		}
	})
	NewHandler(svc).RegisterRoutes(e.Group(""))
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createBody(patient, doctor uuid.UUID) string {
	return `{"patient":"` + patient.String() + `","doctor":"` + doctor.String() + `"}`
}

func TestHandler_CreateAndList(t *testing.T) {
	f := newFixture()
	e := newTestEcho(f.svc, f.alice)

	rec := do(e, http.MethodPost, "/mappings", createBody(f.alicePat, f.doctor))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var m struct {
		ID      string `json:"id"`
		Patient struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"patient"`
		AssignedBy *struct {
			ID string `json:"id"`
		} `json:"assigned_by"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Patient.ID != f.alicePat.String() || m.Patient.Name == "" {
		t.Errorf("expected expanded patient, got %+v", m.Patient)
	}
	if m.AssignedBy == nil || m.AssignedBy.ID != f.alice.AccountID.String() {
		t.Errorf("unexpected assigned_by %+v", m.AssignedBy)
	}

	rec = do(e, http.MethodGet, "/mappings", "")
	var list []map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &list)
	if rec.Code != http.StatusOK || len(list) != 1 {
		t.Errorf("list: expected one mapping, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/mappings/"+f.alicePat.String(), "")
	if rec.Code != http.StatusOK {
		t.Errorf("per patient: expected 200, got %d", rec.Code)
	}

	if rec := do(e, http.MethodDelete, "/mappings/"+m.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", rec.Code)
	}
	if rec := do(e, http.MethodDelete, "/mappings/"+m.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestHandler_DuplicateBody(t *testing.T) {
	f := newFixture()
	e := newTestEcho(f.svc, f.alice)

	do(e, http.MethodPost, "/mappings", createBody(f.alicePat, f.doctor))
	rec := do(e, http.MethodPost, "/mappings", createBody(f.alicePat, f.doctor))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string][]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if got := body["non_field_errors"]; len(got) != 1 || got[0] != msgDuplicate {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_NotOwner(t *testing.T) {
	f := newFixture()
	e := newTestEcho(f.svc, f.alice)

	rec := do(e, http.MethodPost, "/mappings", createBody(f.bobPat, f.doctor))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), msgNotOwner) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_UnknownPatientIs404(t *testing.T) {
	f := newFixture()
	e := newTestEcho(f.svc, f.alice)

	if rec := do(e, http.MethodPost, "/mappings", createBody(uuid.New(), f.doctor)); rec.Code != http.StatusNotFound {
		t.Errorf("create: expected 404, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/mappings/"+uuid.NewString(), ""); rec.Code != http.StatusNotFound {
		t.Errorf("per patient: expected 404, got %d", rec.Code)
	}
}

func TestHandler_NullReference(t *testing.T) {
	f := newFixture()
	e := newTestEcho(f.svc, f.alice)

	rec := do(e, http.MethodPost, "/mappings", `{"patient":null,"doctor":"`+f.doctor.String()+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"patient":["This field may not be null."]}` {
		t.Errorf("unexpected body %s", got)
	}
}
