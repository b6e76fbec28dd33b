package mapping

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinic/records/internal/domain/identity"
)

// Repository stores mappings. Reads return the expanded representation.
type Repository interface {
	// Create inserts a mapping and returns its id. A second mapping for the
	// same patient and doctor fails with apperr.ErrDuplicate.
	Create(ctx context.Context, patientID, doctorID, assignedBy uuid.UUID) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Mapping, error)
	List(ctx context.Context) ([]*Mapping, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*Mapping, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PatientLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.Patient, error)
}

type DoctorLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.Doctor, error)
}
