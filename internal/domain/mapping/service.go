package mapping

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/records/internal/platform/apperr"
	"github.com/clinic/records/internal/platform/auth"
	"github.com/clinic/records/internal/platform/db"
	"github.com/clinic/records/internal/platform/validation"
)

const (
	msgInvalidUUID = "Must be a valid UUID."
	msgNotOwner    = "assignment not permitted for patients you do not own"
	msgDuplicate   = "mapping for this patient and doctor already exists"
)

var (
	errPatientNotFound = apperr.Newf(apperr.ErrNotFound, "patient not found")
	errDoctorNotFound  = apperr.Newf(apperr.ErrNotFound, "doctor not found")
	errMappingNotFound = apperr.Newf(apperr.ErrNotFound, "mapping not found")
)

// Service manages doctor assignments. Any authenticated caller may read and
// delete mappings; only a patient's owner may create one for that patient.
type Service struct {
	repo     Repository
	patients PatientLookup
	doctors  DoctorLookup
	tx       db.TxBeginner
	logger   zerolog.Logger
}

// NewService builds the manager. tx may be nil, in which case creation runs
// without a surrounding transaction.
func NewService(repo Repository, patients PatientLookup, doctors DoctorLookup, tx db.TxBeginner, logger zerolog.Logger) *Service {
	return &Service{repo: repo, patients: patients, doctors: doctors, tx: tx, logger: logger}
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.tx, fn)
}

// List returns every mapping, most recently assigned first.
func (s *Service) List(ctx context.Context, caller auth.Identity) ([]*Mapping, error) {
	if err := auth.Authorize(caller, auth.UnownedResource(auth.KindMapping), auth.ActionList); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// ListForPatient returns the mappings of one patient regardless of who owns
// it.
func (s *Service) ListForPatient(ctx context.Context, caller auth.Identity, patientID uuid.UUID) ([]*Mapping, error) {
	if err := auth.Authorize(caller, auth.UnownedResource(auth.KindMapping), auth.ActionList); err != nil {
		return nil, err
	}
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		if apperr.IsNotFound(err) {
			return nil, errPatientNotFound
		}
		return nil, fmt.Errorf("lookup patient: %w", err)
	}
	return s.repo.ListForPatient(ctx, patientID)
}

// Create assigns a doctor to a patient on behalf of caller. The checks run in
// order: field syntax, existence of both records, ownership of the patient.
// The unique constraint on (patient, doctor) settles concurrent duplicates.
func (s *Service) Create(ctx context.Context, caller auth.Identity, in CreateInput) (*Mapping, error) {
	if err := auth.Authorize(caller, auth.UnownedResource(auth.KindMapping), auth.ActionCreate); err != nil {
		return nil, err
	}

	v := apperr.NewValidationError()
	validation.NotNull(in.nulls, v)
	patientID := parseRef("patient", in.Patient, v)
	doctorID := parseRef("doctor", in.Doctor, v)
	if err := v.Err(); err != nil {
		return nil, err
	}

	patient, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, errPatientNotFound
		}
		return nil, fmt.Errorf("lookup patient: %w", err)
	}
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		if apperr.IsNotFound(err) {
			return nil, errDoctorNotFound
		}
		return nil, fmt.Errorf("lookup doctor: %w", err)
	}
	if patient.OwnerID != caller.AccountID {
		return nil, apperr.FieldError(apperr.NonFieldErrors, msgNotOwner)
	}

	var created *Mapping
	err = s.inTx(ctx, func(ctx context.Context) error {
		id, err := s.repo.Create(ctx, patientID, doctorID, caller.AccountID)
		if err != nil {
			return err
		}
		created, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		if apperr.IsDuplicate(err) {
			return nil, apperr.Newf(apperr.ErrDuplicate, msgDuplicate)
		}
		return nil, fmt.Errorf("create mapping: %w", err)
	}

	s.logger.Info().
		Str("mapping_id", created.ID.String()).
		Str("patient_id", patientID.String()).
		Str("doctor_id", doctorID.String()).
		Str("account_id", caller.AccountID.String()).
		Msg("doctor assigned to patient")
	return created, nil
}

// Delete removes a mapping by id.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	if err := auth.Authorize(caller, auth.UnownedResource(auth.KindMapping), auth.ActionDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if apperr.IsNotFound(err) {
			return errMappingNotFound
		}
		return err
	}
	s.logger.Info().Str("mapping_id", id.String()).Str("account_id", caller.AccountID.String()).Msg("mapping removed")
	return nil
}

func parseRef(field string, raw *string, v *apperr.ValidationError) uuid.UUID {
	if raw == nil {
		if !v.Has(field) {
			validation.Present(field, false, v)
		}
		return uuid.Nil
	}
	if !validation.Required(field, *raw, v) {
		return uuid.Nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		v.Add(field, msgInvalidUUID)
		return uuid.Nil
	}
	return id
}
