package mapping

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/records/internal/domain/account"
	"github.com/clinic/records/internal/platform/auth"
	"github.com/clinic/records/internal/platform/validation"
)

// PatientSummary is the part of a patient shown inside a mapping.
type PatientSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// DoctorSummary is the part of a doctor shown inside a mapping.
type DoctorSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
}

// Mapping assigns a doctor to a patient. AssignedBy is nil once the
// assigning account has been removed.
type Mapping struct {
	ID         uuid.UUID        `json:"id"`
	Patient    PatientSummary   `json:"patient"`
	Doctor     DoctorSummary    `json:"doctor"`
	AssignedBy *account.Summary `json:"assigned_by"`
	AssignedAt time.Time        `json:"assigned_at"`
}

func (m *Mapping) Resource() auth.Resource {
	return auth.UnownedResource(auth.KindMapping)
}

// CreateInput names the patient and doctor to link. Both arrive as strings
// so malformed ids become field errors.
type CreateInput struct {
	Patient *string `json:"patient"`
	Doctor  *string `json:"doctor"`

	nulls []string
}

func (in *CreateInput) UnmarshalJSON(data []byte) error {
	type plain CreateInput
	if err := json.Unmarshal(data, (*plain)(in)); err != nil {
		return err
	}
	in.nulls = validation.NullFields(data, "patient", "doctor")
	return nil
}
