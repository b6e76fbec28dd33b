// Package apperr defines the error taxonomy shared by services and the HTTP
// error handler. Services return these values (possibly wrapped); the API
// surface maps them to status codes.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Sentinel errors. Wrap them with fmt.Errorf("...: %w", err) to add context.
var (
	ErrUnauthorized = errors.New("authentication credentials were not provided or are invalid")
	ErrForbidden    = errors.New("you do not have permission to perform this action")
	ErrNotFound     = errors.New("not found")

	// ErrDuplicate is returned on unique constraint violations.
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidReference is returned when a foreign key points at nothing.
	ErrInvalidReference = errors.New("referenced record does not exist")

	// ErrCheckViolation is returned when a CHECK constraint rejects a row.
	ErrCheckViolation = errors.New("value violates a check constraint")

	// ErrInternal marks failures whose cause must not reach the client.
	ErrInternal = errors.New("internal server error")
)

type detailError struct {
	kind error
	msg  string
}

func (e *detailError) Error() string { return e.msg }
func (e *detailError) Unwrap() error { return e.kind }

// Newf returns an error of the given kind whose message is shown to clients
// as-is. errors.Is(err, kind) holds.
func Newf(kind error, format string, args ...interface{}) error {
	return &detailError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Detail returns the client-facing message of err: the Newf message when one
// is present in the chain, otherwise fallback.
func Detail(err error, fallback string) string {
	var d *detailError
	if errors.As(err, &d) {
		return d.msg
	}
	return fallback
}

// NonFieldErrors is the key used for errors that belong to no single field.
const NonFieldErrors = "non_field_errors"

// ValidationError collects per-field messages.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// FieldError builds a ValidationError holding a single message.
func FieldError(field, msg string) *ValidationError {
	v := NewValidationError()
	v.Add(field, msg)
	return v
}

// Add appends msg to the messages of field.
func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], msg)
}

// Has reports whether field already carries a message.
func (v *ValidationError) Has(field string) bool {
	return len(v.Fields[field]) > 0
}

func (v *ValidationError) Empty() bool { return len(v.Fields) == 0 }

// Err returns v as an error, or nil when no field failed.
func (v *ValidationError) Err() error {
	if v == nil || v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	names := lo.Keys(v.Fields)
	sort.Strings(names)

	parts := lo.Map(names, func(f string, _ int) string {
		return f + ": " + strings.Join(v.Fields[f], "; ")
	})
	return "validation failed: " + strings.Join(parts, ", ")
}

// IsValidation reports whether err wraps a *ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsDuplicate(err error) bool    { return errors.Is(err, ErrDuplicate) }
func IsForbidden(err error) bool    { return errors.Is(err, ErrForbidden) }
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
