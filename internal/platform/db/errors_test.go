package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinic/records/internal/platform/apperr"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, apperr.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), apperr.ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "uq_mapping_patient_doctor"}, apperr.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: "23503"}, apperr.ErrInvalidReference},
		{"check", &pgconn.PgError{Code: "23514", ConstraintName: "patient_age_check"}, apperr.ErrCheckViolation},
		{"not null", &pgconn.PgError{Code: "23502"}, apperr.ErrCheckViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.in)
			if !errors.Is(got, tt.want) {
				t.Errorf("Classify(%v) = %v, want wrapping %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassify_KeepsDriverError(t *testing.T) {
	src := &pgconn.PgError{Code: "23505", ConstraintName: "account_email_key"}
	got := Classify(src)

	var pgErr *pgconn.PgError
	if !errors.As(got, &pgErr) {
		t.Fatal("expected driver error to stay in the chain")
	}
	if ConstraintName(got) != "account_email_key" {
		t.Errorf("expected constraint name, got %q", ConstraintName(got))
	}
}

func TestClassify_Passthrough(t *testing.T) {
	if Classify(nil) != nil {
		t.Error("expected nil for nil")
	}

	plain := errors.New("connection reset")
	if got := Classify(plain); got != plain {
		t.Errorf("expected unchanged error, got %v", got)
	}

	other := &pgconn.PgError{Code: "40001"}
	if got := Classify(other); got != error(other) {
		t.Errorf("expected unchanged serialization error, got %v", got)
	}
}
