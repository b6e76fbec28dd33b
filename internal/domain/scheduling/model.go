package scheduling

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/records/internal/platform/apperr"
	"github.com/clinic/records/internal/platform/auth"
	"github.com/clinic/records/internal/platform/validation"
)

// Appointment books a patient with a doctor at a point in time.
type Appointment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor"`
	Date        time.Time `db:"date" json:"date"`
	Description string    `db:"description" json:"description"`
}

func (a *Appointment) Resource() auth.Resource {
	return auth.UnownedResource(auth.KindAppointment)
}

const (
	msgInvalidUUID = "Must be a valid UUID."
	msgInvalidDate = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."
)

// dateLayouts are tried in order. Layouts without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// AppointmentInput is the writable part of an appointment. References and the
// date arrive as strings so that malformed values become field errors rather
// than bind failures.
type AppointmentInput struct {
	Patient     *string `json:"patient"`
	Doctor      *string `json:"doctor"`
	Date        *string `json:"date"`
	Description *string `json:"description"`

	nulls []string
}

var appointmentFields = []string{"patient", "doctor", "date", "description"}

// UnmarshalJSON records explicit nulls so parse can reject them.
func (in *AppointmentInput) UnmarshalJSON(data []byte) error {
	type plain AppointmentInput
	if err := json.Unmarshal(data, (*plain)(in)); err != nil {
		return err
	}
	in.nulls = validation.NullFields(data, appointmentFields...)
	return nil
}

// parsed holds the decoded values of the fields present in an input.
type parsed struct {
	patient *uuid.UUID
	doctor  *uuid.UUID
	date    *time.Time
}

// parse validates the input and decodes its fields. Unless partial is set
// every field must be present.
func (in AppointmentInput) parse(partial bool) (parsed, error) {
	var out parsed
	v := apperr.NewValidationError()
	validation.NotNull(in.nulls, v)

	out.patient = parseRef("patient", in.Patient, partial, v)
	out.doctor = parseRef("doctor", in.Doctor, partial, v)

	if in.Date != nil {
		if t, ok := parseDate(*in.Date); ok {
			out.date = &t
		} else {
			v.Add("date", msgInvalidDate)
		}
	} else if !partial && !v.Has("date") {
		validation.Present("date", false, v)
	}

	if in.Description != nil {
		validation.Required("description", *in.Description, v)
	} else if !partial && !v.Has("description") {
		validation.Present("description", false, v)
	}
	return out, v.Err()
}

func parseRef(field string, raw *string, partial bool, v *apperr.ValidationError) *uuid.UUID {
	if raw == nil {
		if !partial && !v.Has(field) {
			validation.Present(field, false, v)
		}
		return nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		v.Add(field, msgInvalidUUID)
		return nil
	}
	return &id
}

func (p parsed) applyTo(a *Appointment, in AppointmentInput) {
	if p.patient != nil {
		a.PatientID = *p.patient
	}
	if p.doctor != nil {
		a.DoctorID = *p.doctor
	}
	if p.date != nil {
		a.Date = *p.date
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
}
