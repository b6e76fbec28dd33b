package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinic/records/internal/platform/apperr"
	"github.com/clinic/records/internal/platform/auth"
	"github.com/clinic/records/internal/platform/db"
)

type Service struct {
	appointments AppointmentRepository
	patients     PatientLookup
	doctors      DoctorLookup
}

func NewService(appts AppointmentRepository, patients PatientLookup, doctors DoctorLookup) *Service {
	return &Service{appointments: appts, patients: patients, doctors: doctors}
}

var errAppointmentNotFound = apperr.Newf(apperr.ErrNotFound, "appointment not found")

// fkFields maps foreign key constraints of the appointment table to the
// request field they belong to.
var fkFields = map[string]string{
	"appointment_patient_id_fkey": "patient",
	"appointment_doctor_id_fkey":  "doctor",
}

func invalidPK(id uuid.UUID) string {
	return fmt.Sprintf("Invalid pk %q - object does not exist.", id.String())
}

// ListAppointments returns every appointment ordered by date.
func (s *Service) ListAppointments(ctx context.Context, caller auth.Identity, limit, offset int) ([]*Appointment, int, error) {
	if err := auth.Authorize(caller, auth.UnownedResource(auth.KindAppointment), auth.ActionList); err != nil {
		return nil, 0, err
	}
	return s.appointments.List(ctx, limit, offset)
}

func (s *Service) GetAppointment(ctx context.Context, caller auth.Identity, id uuid.UUID) (*Appointment, error) {
	return s.load(ctx, caller, id, auth.ActionView)
}

func (s *Service) CreateAppointment(ctx context.Context, caller auth.Identity, in AppointmentInput) (*Appointment, error) {
	a := &Appointment{}
	if err := auth.Authorize(caller, a.Resource(), auth.ActionCreate); err != nil {
		return nil, err
	}
	p, err := in.parse(false)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, p); err != nil {
		return nil, err
	}
	p.applyTo(a, in)
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, referenceError(err)
	}
	return a, nil
}

// UpdateAppointment applies in to the appointment. With partial unset every
// field must be present.
func (s *Service) UpdateAppointment(ctx context.Context, caller auth.Identity, id uuid.UUID, in AppointmentInput, partial bool) (*Appointment, error) {
	a, err := s.load(ctx, caller, id, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}
	p, err := in.parse(partial)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, p); err != nil {
		return nil, err
	}
	p.applyTo(a, in)
	if err := s.appointments.Update(ctx, a); err != nil {
		if apperr.IsNotFound(err) {
			return nil, errAppointmentNotFound
		}
		return nil, referenceError(err)
	}
	return a, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	if _, err := s.load(ctx, caller, id, auth.ActionDelete); err != nil {
		return err
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		if apperr.IsNotFound(err) {
			return errAppointmentNotFound
		}
		return err
	}
	return nil
}

func (s *Service) load(ctx context.Context, caller auth.Identity, id uuid.UUID, action auth.Action) (*Appointment, error) {
	if caller.IsZero() {
		return nil, apperr.ErrUnauthorized
	}
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, errAppointmentNotFound
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if err := auth.Authorize(caller, a.Resource(), action); err != nil {
		return nil, err
	}
	return a, nil
}

// checkReferences reports every referenced patient or doctor that does not
// exist as a field error.
func (s *Service) checkReferences(ctx context.Context, p parsed) error {
	v := apperr.NewValidationError()
	if p.patient != nil {
		if _, err := s.patients.GetByID(ctx, *p.patient); err != nil {
			if !apperr.IsNotFound(err) {
				return fmt.Errorf("lookup patient: %w", err)
			}
			v.Add("patient", invalidPK(*p.patient))
		}
	}
	if p.doctor != nil {
		if _, err := s.doctors.GetByID(ctx, *p.doctor); err != nil {
			if !apperr.IsNotFound(err) {
				return fmt.Errorf("lookup doctor: %w", err)
			}
			v.Add("doctor", invalidPK(*p.doctor))
		}
	}
	return v.Err()
}

// referenceError turns a foreign key violation raised by a write, when a
// reference disappeared after checkReferences, into a field error.
func referenceError(err error) error {
	if !errors.Is(err, apperr.ErrInvalidReference) {
		return err
	}
	if field, ok := fkFields[db.ConstraintName(err)]; ok {
		return apperr.FieldError(field, "Referenced object does not exist.")
	}
	return err
}
