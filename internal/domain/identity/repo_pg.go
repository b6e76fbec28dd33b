package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/records/internal/platform/apperr"
	"github.com/clinic/records/internal/platform/db"
)

// -- Patient Repository --

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

// patientCols selects a patient joined with its owner; p is the patient row
// and a the account row.
const patientCols = `p.id, p.owner_id, a.username, a.email, a.first_name, a.last_name,
	p.name, p.age, p.gender, p.contact, p.notes, p.created_at, p.updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.OwnerID, &p.Owner.Username, &p.Owner.Email, &p.Owner.FirstName, &p.Owner.LastName,
		&p.Name, &p.Age, &p.Gender, &p.Contact, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, db.Classify(err)
	}
	p.Owner.ID = p.OwnerID
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	created, err := scanPatient(r.conn(ctx).QueryRow(ctx, `
		WITH p AS (
			INSERT INTO patient (id, owner_id, name, age, gender, contact, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
		SELECT `+patientCols+` FROM p JOIN account a ON a.id = p.owner_id`,
		p.ID, p.OwnerID, p.Name, p.Age, p.Gender, p.Contact, p.Notes,
	))
	if err != nil {
		return fmt.Errorf("patient create: %w", err)
	}
	*p = *created
	return nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient p JOIN account a ON a.id = p.owner_id WHERE p.id = $1`, id))
}

func (r *patientRepoPG) GetOwned(ctx context.Context, ownerID, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient p JOIN account a ON a.id = p.owner_id
		WHERE p.id = $1 AND p.owner_id = $2`, id, ownerID))
}

func (r *patientRepoPG) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patient p JOIN account a ON a.id = p.owner_id
		WHERE p.owner_id = $1
		ORDER BY p.created_at DESC, p.id
		LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	patients := []*Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

// Update writes the mutable fields and refreshes updated_at. The owner never
// changes.
func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	updated, err := scanPatient(r.conn(ctx).QueryRow(ctx, `
		WITH p AS (
			UPDATE patient SET name = $2, age = $3, gender = $4, contact = $5, notes = $6, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+patientCols+` FROM p JOIN account a ON a.id = p.owner_id`,
		p.ID, p.Name, p.Age, p.Gender, p.Contact, p.Notes,
	))
	if err != nil {
		return fmt.Errorf("patient update: %w", err)
	}
	*p = *updated
	return nil
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("patient delete: %w", db.Classify(err))
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// -- Doctor Repository --

type doctorRepoPG struct {
	pool *pgxpool.Pool
}

func NewDoctorRepo(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

func (r *doctorRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const doctorCols = `id, name, specialty, contact, email, notes, created_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	if err := row.Scan(&d.ID, &d.Name, &d.Specialty, &d.Contact, &d.Email, &d.Notes, &d.CreatedAt); err != nil {
		return nil, db.Classify(err)
	}
	return &d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctor (id, name, specialty, contact, email, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		d.ID, d.Name, d.Specialty, d.Contact, d.Email, d.Notes,
	).Scan(&d.CreatedAt)
	if err != nil {
		return fmt.Errorf("doctor create: %w", db.Classify(err))
	}
	return nil
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
}

func (r *doctorRepoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctor`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+doctorCols+` FROM doctor ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	doctors := []*Doctor{}
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		doctors = append(doctors, d)
	}
	return doctors, total, rows.Err()
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE doctor SET name = $2, specialty = $3, contact = $4, email = $5, notes = $6
		WHERE id = $1
		RETURNING created_at`,
		d.ID, d.Name, d.Specialty, d.Contact, d.Email, d.Notes,
	).Scan(&d.CreatedAt)
	if err != nil {
		return fmt.Errorf("doctor update: %w", db.Classify(err))
	}
	return nil
}

func (r *doctorRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("doctor delete: %w", db.Classify(err))
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
