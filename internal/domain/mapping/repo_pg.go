package mapping

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/clinic/records/internal/domain/account"
	"github.com/clinic/records/internal/platform/apperr"
	"github.com/clinic/records/internal/platform/db"
)

type mappingRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &mappingRepoPG{pool: pool}
}

func (r *mappingRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

// expandedSelect joins a mapping m with its patient p, doctor d and, when
// still present, the assigning account a.
const expandedSelect = `
	SELECT m.id, m.assigned_at, p.id, p.name, d.id, d.name, d.specialty,
		a.id, a.username, a.email, a.first_name, a.last_name
	FROM patient_doctor_mapping m
	JOIN patient p ON p.id = m.patient_id
	JOIN doctor d ON d.id = m.doctor_id
	LEFT JOIN account a ON a.id = m.assigned_by_id`

func scanMapping(row pgx.Row) (*Mapping, error) {
	var (
		m                                    Mapping
		assignedBy                           *uuid.UUID
		username, email, firstName, lastName *string
	)
	err := row.Scan(&m.ID, &m.AssignedAt, &m.Patient.ID, &m.Patient.Name,
		&m.Doctor.ID, &m.Doctor.Name, &m.Doctor.Specialty,
		&assignedBy, &username, &email, &firstName, &lastName)
	if err != nil {
		return nil, db.Classify(err)
	}
	if assignedBy != nil {
		m.AssignedBy = &account.Summary{
			ID:        *assignedBy,
			Username:  lo.FromPtr(username),
			Email:     lo.FromPtr(email),
			FirstName: lo.FromPtr(firstName),
			LastName:  lo.FromPtr(lastName),
		}
	}
	return &m, nil
}

func (r *mappingRepoPG) Create(ctx context.Context, patientID, doctorID, assignedBy uuid.UUID) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_doctor_mapping (id, patient_id, doctor_id, assigned_by_id)
		VALUES ($1, $2, $3, $4)`,
		id, patientID, doctorID, assignedBy)
	if err != nil {
		return uuid.Nil, fmt.Errorf("mapping create: %w", db.Classify(err))
	}
	return id, nil
}

func (r *mappingRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Mapping, error) {
	return scanMapping(r.conn(ctx).QueryRow(ctx, expandedSelect+` WHERE m.id = $1`, id))
}

func (r *mappingRepoPG) List(ctx context.Context) ([]*Mapping, error) {
	return r.query(ctx, expandedSelect+` ORDER BY m.assigned_at DESC, m.id`)
}

func (r *mappingRepoPG) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*Mapping, error) {
	return r.query(ctx, expandedSelect+` WHERE m.patient_id = $1 ORDER BY m.assigned_at DESC, m.id`, patientID)
}

func (r *mappingRepoPG) query(ctx context.Context, sql string, args ...any) ([]*Mapping, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("mapping list: %w", err)
	}
	defer rows.Close()

	mappings := []*Mapping{}
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func (r *mappingRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_doctor_mapping WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mapping delete: %w", db.Classify(err))
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
