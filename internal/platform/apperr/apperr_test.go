package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_AddAndErr(t *testing.T) {
	v := NewValidationError()
	if v.Err() != nil {
		t.Fatal("expected nil error for empty validation")
	}

	v.Add("age", "ensure this value is greater than or equal to 0")
	v.Add("name", "this field is required")
	v.Add("name", "second message")

	err := v.Err()
	if err == nil {
		t.Fatal("expected non-nil error")
	}
	if len(v.Fields["name"]) != 2 {
		t.Errorf("expected 2 name messages, got %d", len(v.Fields["name"]))
	}
	want := "validation failed: age: ensure this value is greater than or equal to 0, name: this field is required; second message"
	if err.Error() != want {
		t.Errorf("unexpected message:\n got %q\nwant %q", err.Error(), want)
	}
}

func TestIsValidation_Wrapped(t *testing.T) {
	err := fmt.Errorf("create patient: %w", FieldError("age", "negative"))
	v, ok := IsValidation(err)
	if !ok {
		t.Fatal("expected wrapped validation error to be detected")
	}
	if !v.Has("age") {
		t.Error("expected age field")
	}

	if _, ok := IsValidation(errors.New("plain")); ok {
		t.Error("plain error must not be a validation error")
	}
}

func TestNilValidationErr(t *testing.T) {
	var v *ValidationError
	if v.Err() != nil {
		t.Error("nil receiver must yield nil error")
	}
}

func TestSentinelHelpers(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", ErrNotFound)
	if !IsNotFound(wrapped) {
		t.Error("expected IsNotFound")
	}
	if IsDuplicate(wrapped) {
		t.Error("not found is not a duplicate")
	}
	if !IsForbidden(fmt.Errorf("x: %w", ErrForbidden)) {
		t.Error("expected IsForbidden")
	}
	if !IsUnauthorized(ErrUnauthorized) {
		t.Error("expected IsUnauthorized")
	}
}

func TestNewf(t *testing.T) {
	err := Newf(ErrNotFound, "patient %s not found", "42")
	if err.Error() != "patient 42 not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !IsNotFound(err) {
		t.Error("expected Newf error to match its kind")
	}
	if !IsNotFound(fmt.Errorf("outer: %w", err)) {
		t.Error("expected wrapped Newf error to match its kind")
	}
}

func TestDetail(t *testing.T) {
	wrapped := fmt.Errorf("load patient: %w", Newf(ErrNotFound, "patient not found"))
	if got := Detail(wrapped, "fallback"); got != "patient not found" {
		t.Errorf("expected Newf message, got %q", got)
	}
	if got := Detail(fmt.Errorf("x: %w", ErrNotFound), "not found"); got != "not found" {
		t.Errorf("expected fallback, got %q", got)
	}
}
