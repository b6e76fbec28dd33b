package scheduling

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinic/records/internal/domain/identity"
)

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PatientLookup resolves appointment patient references.
// identity.PatientRepository satisfies it.
type PatientLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.Patient, error)
}

// DoctorLookup resolves appointment doctor references.
type DoctorLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.Doctor, error)
}
