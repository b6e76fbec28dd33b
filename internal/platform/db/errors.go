package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinic/records/internal/platform/apperr"
)

// PostgreSQL SQLSTATE codes mapped by Classify.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
)

// Classify translates driver errors into the apperr taxonomy. The original
// error stays in the chain, so callers can still inspect *pgconn.PgError.
// Errors with no mapping are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w (%s): %w", apperr.ErrDuplicate, pgErr.ConstraintName, err)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w (%s): %w", apperr.ErrInvalidReference, pgErr.ConstraintName, err)
	case codeCheckViolation, codeNotNullViolation:
		return fmt.Errorf("%w (%s): %w", apperr.ErrCheckViolation, pgErr.ConstraintName, err)
	}
	return err
}

// ConstraintName returns the violated constraint name, if err carries one.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
