package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinic/records/internal/platform/apperr"
	"github.com/clinic/records/internal/platform/auth"
)

type Service struct {
	patients PatientRepository
	doctors  DoctorRepository
}

func NewService(patients PatientRepository, doctors DoctorRepository) *Service {
	return &Service{patients: patients, doctors: doctors}
}

var (
	errPatientNotFound = apperr.Newf(apperr.ErrNotFound, "patient not found")
	errDoctorNotFound  = apperr.Newf(apperr.ErrNotFound, "doctor not found")
)

// -- Patient --

// ListPatients returns the caller's own patients, newest first.
func (s *Service) ListPatients(ctx context.Context, caller auth.Identity, limit, offset int) ([]*Patient, int, error) {
	if err := auth.Authorize(caller, auth.Resource{Kind: auth.KindPatient}, auth.ActionList); err != nil {
		return nil, 0, err
	}
	return s.patients.ListByOwner(ctx, caller.AccountID, limit, offset)
}

// GetPatient returns the patient only when the caller owns it. Other owners'
// patients are indistinguishable from missing ones.
func (s *Service) GetPatient(ctx context.Context, caller auth.Identity, id uuid.UUID) (*Patient, error) {
	if caller.IsZero() {
		return nil, apperr.ErrUnauthorized
	}
	p, err := s.patients.GetOwned(ctx, caller.AccountID, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, errPatientNotFound
		}
		return nil, err
	}
	if err := auth.Authorize(caller, p.Resource(), auth.ActionView); err != nil {
		return nil, err
	}
	return p, nil
}

// CreatePatient stores a new patient owned by the caller.
func (s *Service) CreatePatient(ctx context.Context, caller auth.Identity, in PatientInput) (*Patient, error) {
	p := &Patient{OwnerID: caller.AccountID}
	if err := auth.Authorize(caller, p.Resource(), auth.ActionCreate); err != nil {
		return nil, err
	}
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	in.ApplyTo(p)
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePatient applies in to the patient. With partial unset every required
// field must be present. Only the owner may update.
func (s *Service) UpdatePatient(ctx context.Context, caller auth.Identity, id uuid.UUID, in PatientInput, partial bool) (*Patient, error) {
	p, err := s.loadPatient(ctx, caller, id, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(partial); err != nil {
		return nil, err
	}
	in.ApplyTo(p)
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePatient removes the patient and, through cascades, its mappings and
// appointments. Only the owner may delete.
func (s *Service) DeletePatient(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	if _, err := s.loadPatient(ctx, caller, id, auth.ActionDelete); err != nil {
		return err
	}
	if err := s.patients.Delete(ctx, id); err != nil {
		if apperr.IsNotFound(err) {
			return errPatientNotFound
		}
		return err
	}
	return nil
}

func (s *Service) loadPatient(ctx context.Context, caller auth.Identity, id uuid.UUID, action auth.Action) (*Patient, error) {
	if caller.IsZero() {
		return nil, apperr.ErrUnauthorized
	}
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, errPatientNotFound
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if err := auth.Authorize(caller, p.Resource(), action); err != nil {
		return nil, err
	}
	return p, nil
}

// -- Doctor --

func (s *Service) ListDoctors(ctx context.Context, caller auth.Identity, limit, offset int) ([]*Doctor, int, error) {
	if err := auth.Authorize(caller, auth.UnownedResource(auth.KindDoctor), auth.ActionList); err != nil {
		return nil, 0, err
	}
	return s.doctors.List(ctx, limit, offset)
}

func (s *Service) GetDoctor(ctx context.Context, caller auth.Identity, id uuid.UUID) (*Doctor, error) {
	return s.loadDoctor(ctx, caller, id, auth.ActionView)
}

func (s *Service) CreateDoctor(ctx context.Context, caller auth.Identity, in DoctorInput) (*Doctor, error) {
	d := &Doctor{}
	if err := auth.Authorize(caller, d.Resource(), auth.ActionCreate); err != nil {
		return nil, err
	}
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	in.ApplyTo(d)
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, caller auth.Identity, id uuid.UUID, in DoctorInput, partial bool) (*Doctor, error) {
	d, err := s.loadDoctor(ctx, caller, id, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(partial); err != nil {
		return nil, err
	}
	in.ApplyTo(d)
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	if _, err := s.loadDoctor(ctx, caller, id, auth.ActionDelete); err != nil {
		return err
	}
	if err := s.doctors.Delete(ctx, id); err != nil {
		if apperr.IsNotFound(err) {
			return errDoctorNotFound
		}
		return err
	}
	return nil
}

func (s *Service) loadDoctor(ctx context.Context, caller auth.Identity, id uuid.UUID, action auth.Action) (*Doctor, error) {
	if caller.IsZero() {
		return nil, apperr.ErrUnauthorized
	}
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, errDoctorNotFound
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if err := auth.Authorize(caller, d.Resource(), action); err != nil {
		return nil, err
	}
	return d, nil
}
