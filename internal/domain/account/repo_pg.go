package account

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/records/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const accountCols = `id, email, username, password_hash, first_name, last_name, is_active, date_joined, last_login`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.Username, &a.PasswordHash, &a.FirstName, &a.LastName,
		&a.IsActive, &a.DateJoined, &a.LastLogin)
	if err != nil {
		return nil, db.Classify(err)
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Account) error {
	a.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO account (id, email, username, password_hash, first_name, last_name, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING date_joined`,
		a.ID, a.Email, a.Username, a.PasswordHash, a.FirstName, a.LastName, a.IsActive,
	).Scan(&a.DateJoined)
	if err != nil {
		return fmt.Errorf("account create: %w", db.Classify(err))
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return scanAccount(r.conn(ctx).QueryRow(ctx, `SELECT `+accountCols+` FROM account WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return scanAccount(r.conn(ctx).QueryRow(ctx, `SELECT `+accountCols+` FROM account WHERE email = $1`, email))
}

func (r *repoPG) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM account WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *repoPG) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM account WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

func (r *repoPG) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE account SET last_login = $2 WHERE id = $1`, id, at)
	return err
}
