package identity

import (
	"context"

	"github.com/google/uuid"
)

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	// GetByID ignores ownership. Callers that expose the result must scope
	// it themselves or go through GetOwned.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetOwned(ctx context.Context, ownerID, id uuid.UUID) (*Patient, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Patient, int, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	List(ctx context.Context, limit, offset int) ([]*Doctor, int, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
}
