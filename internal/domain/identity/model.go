package identity

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/records/internal/domain/account"
	"github.com/clinic/records/internal/platform/apperr"
	"github.com/clinic/records/internal/platform/auth"
	"github.com/clinic/records/internal/platform/validation"
)

const (
	MaxNameLength      = 255
	MaxGenderLength    = 50
	MaxContactLength   = 100
	MaxSpecialtyLength = 255
	MaxEmailLength     = 254
)

// Patient is a clinical record owned by exactly one account.
type Patient struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	OwnerID   uuid.UUID       `db:"owner_id" json:"-"`
	Owner     account.Summary `json:"owner"`
	Name      string          `db:"name" json:"name"`
	Age       int             `db:"age" json:"age"`
	Gender    string          `db:"gender" json:"gender"`
	Contact   string          `db:"contact" json:"contact"`
	Notes     string          `db:"notes" json:"notes"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

func (p *Patient) Resource() auth.Resource {
	return auth.OwnedResource(auth.KindPatient, p.OwnerID)
}

// Doctor is a directory entry shared by all accounts.
type Doctor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Specialty string    `db:"specialty" json:"specialty"`
	Contact   string    `db:"contact" json:"contact"`
	Email     string    `db:"email" json:"email"`
	Notes     string    `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (d *Doctor) Resource() auth.Resource {
	return auth.UnownedResource(auth.KindDoctor)
}

// PatientInput is the writable part of a patient. Nil fields were absent
// from the request body or explicitly null.
type PatientInput struct {
	Name    *string `json:"name"`
	Age     *int    `json:"age"`
	Gender  *string `json:"gender"`
	Contact *string `json:"contact"`
	Notes   *string `json:"notes"`

	nulls []string
}

var patientFields = []string{"name", "age", "gender", "contact", "notes"}

// UnmarshalJSON records explicit nulls so Validate can reject them.
func (in *PatientInput) UnmarshalJSON(data []byte) error {
	type plain PatientInput
	if err := json.Unmarshal(data, (*plain)(in)); err != nil {
		return err
	}
	in.nulls = validation.NullFields(data, patientFields...)
	return nil
}

// Validate checks the fields present in the input. Unless partial is set,
// name and age must be present. No field may be null.
func (in PatientInput) Validate(partial bool) error {
	v := apperr.NewValidationError()
	validation.NotNull(in.nulls, v)
	if in.Name != nil {
		if validation.Required("name", *in.Name, v) {
			validation.MaxLength("name", *in.Name, MaxNameLength, v)
		}
	} else if !partial && !v.Has("name") {
		validation.Present("name", false, v)
	}
	if in.Age != nil {
		validation.NonNegative("age", *in.Age, v)
		if *in.Age > math.MaxInt32 {
			v.Add("age", "Ensure this value is less than or equal to 2147483647.")
		}
	} else if !partial && !v.Has("age") {
		validation.Present("age", false, v)
	}
	if in.Gender != nil {
		validation.MaxLength("gender", *in.Gender, MaxGenderLength, v)
	}
	if in.Contact != nil {
		validation.MaxLength("contact", *in.Contact, MaxContactLength, v)
	}
	return v.Err()
}

// ApplyTo copies the present fields onto p.
func (in PatientInput) ApplyTo(p *Patient) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Age != nil {
		p.Age = *in.Age
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.Contact != nil {
		p.Contact = *in.Contact
	}
	if in.Notes != nil {
		p.Notes = *in.Notes
	}
}

// DoctorInput is the writable part of a doctor.
type DoctorInput struct {
	Name      *string `json:"name"`
	Specialty *string `json:"specialty"`
	Contact   *string `json:"contact"`
	Email     *string `json:"email"`
	Notes     *string `json:"notes"`

	nulls []string
}

var doctorFields = []string{"name", "specialty", "contact", "email", "notes"}

func (in *DoctorInput) UnmarshalJSON(data []byte) error {
	type plain DoctorInput
	if err := json.Unmarshal(data, (*plain)(in)); err != nil {
		return err
	}
	in.nulls = validation.NullFields(data, doctorFields...)
	return nil
}

// Validate checks the fields present in the input. Unless partial is set,
// name must be present.
func (in DoctorInput) Validate(partial bool) error {
	v := apperr.NewValidationError()
	validation.NotNull(in.nulls, v)
	if in.Name != nil {
		if validation.Required("name", *in.Name, v) {
			validation.MaxLength("name", *in.Name, MaxNameLength, v)
		}
	} else if !partial && !v.Has("name") {
		validation.Present("name", false, v)
	}
	if in.Specialty != nil {
		validation.MaxLength("specialty", *in.Specialty, MaxSpecialtyLength, v)
	}
	if in.Contact != nil {
		validation.MaxLength("contact", *in.Contact, MaxContactLength, v)
	}
	if in.Email != nil {
		validation.MaxLength("email", *in.Email, MaxEmailLength, v)
		validation.Email("email", *in.Email, v)
	}
	return v.Err()
}

// ApplyTo copies the present fields onto d.
func (in DoctorInput) ApplyTo(d *Doctor) {
	if in.Name != nil {
		d.Name = strings.TrimSpace(*in.Name)
	}
	if in.Specialty != nil {
		d.Specialty = *in.Specialty
	}
	if in.Contact != nil {
		d.Contact = *in.Contact
	}
	if in.Email != nil {
		d.Email = *in.Email
	}
	if in.Notes != nil {
		d.Notes = *in.Notes
	}
}
