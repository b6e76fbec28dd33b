// Package validation holds field checks shared by the domain services. Each
// check appends a client-facing message to the ValidationError passed in.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/clinic/records/internal/platform/apperr"
)

const (
	MsgRequired     = "This field is required."
	MsgBlank        = "This field may not be blank."
	MsgNull         = "This field may not be null."
	MsgInvalidEmail = "Enter a valid email address."
)

var jsonNull = []byte("null")

// NullFields returns the members of fields that the JSON object in data sets
// to an explicit null. Absent members and non-object input yield nothing.
func NullFields(data []byte, fields ...string) []string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	return lo.Filter(fields, func(f string, _ int) bool {
		raw, ok := obj[f]
		return ok && bytes.Equal(bytes.TrimSpace(raw), jsonNull)
	})
}

// NotNull adds MsgNull to every field in nulls.
func NotNull(nulls []string, v *apperr.ValidationError) {
	for _, f := range nulls {
		v.Add(f, MsgNull)
	}
}

// Required fails when value is empty after trimming.
func Required(field, value string, v *apperr.ValidationError) bool {
	if strings.TrimSpace(value) == "" {
		v.Add(field, MsgBlank)
		return false
	}
	return true
}

// Present fails when a required field was omitted from the request.
func Present(field string, present bool, v *apperr.ValidationError) bool {
	if !present {
		v.Add(field, MsgRequired)
	}
	return present
}

// MaxLength fails when value holds more than max characters.
func MaxLength(field, value string, max int, v *apperr.ValidationError) {
	if utf8.RuneCountInString(value) > max {
		v.Add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", max))
	}
}

// NonNegative fails when val is below zero.
func NonNegative(field string, val int, v *apperr.ValidationError) {
	if val < 0 {
		v.Add(field, "Ensure this value is greater than or equal to 0.")
	}
}

// Email fails when value is not a bare address such as a@x.com. An empty
// value passes; pair with Required when the field is mandatory.
func Email(field, value string, v *apperr.ValidationError) {
	if value == "" {
		return
	}
	if !IsEmail(value) {
		v.Add(field, MsgInvalidEmail)
	}
}

// IsEmail reports whether s is a single address without a display name.
func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || domain == "" || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	return strings.Contains(domain, ".") || domain == "localhost"
}

// NormalizeEmail lowercases the domain part and trims surrounding space.
func NormalizeEmail(s string) string {
	s = strings.TrimSpace(s)
	local, domain, ok := strings.Cut(s, "@")
	if !ok {
		return s
	}
	return local + "@" + strings.ToLower(domain)
}
