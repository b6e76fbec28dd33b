package scheduling

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/records/internal/platform/apperr"
	"github.com/clinic/records/internal/platform/validation"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2026-03-01T09:30:00Z", time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC), true},
		{"2026-03-01T11:30:00+02:00", time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC), true},
		{"2026-03-01T09:30", time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC), true},
		{"2026-03-01 09:30:15", time.Date(2026, 3, 1, 9, 30, 15, 0, time.UTC), true},
		{"2026-03-01", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := parseDate(tt.in)
		if ok != tt.ok {
			t.Errorf("parseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("parseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAppointmentInput_PartialSkipsMissing(t *testing.T) {
	p, err := AppointmentInput{}.parse(true)
	if err != nil {
		t.Fatalf("empty partial input: %v", err)
	}
	if p.patient != nil || p.doctor != nil || p.date != nil {
		t.Errorf("expected nothing parsed, got %+v", p)
	}
}

func TestAppointmentInput_NullRejected(t *testing.T) {
	var in AppointmentInput
	body := `{"patient":null,"doctor":"` + uuid.NewString() + `","date":"2026-03-01T09:30:00Z"}`
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	_, err := in.parse(false)
	v, ok := apperr.IsValidation(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := v.Fields["patient"]; len(got) != 1 || got[0] != validation.MsgNull {
		t.Errorf("expected only the null error for patient, got %v", got)
	}
	if got := v.Fields["description"]; len(got) != 1 || got[0] != validation.MsgRequired {
		t.Errorf("expected required error for absent description, got %v", got)
	}

	var partial AppointmentInput
	if err := json.Unmarshal([]byte(`{"description":null}`), &partial); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := partial.parse(true); err == nil {
		t.Error("expected partial update with null description to fail")
	}
}
