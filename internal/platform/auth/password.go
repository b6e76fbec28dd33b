package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes; longer passwords are rejected.
	MaxPasswordBytes = 72
)

var commonPasswords = map[string]bool{
	"password": true, "password1": true, "password123": true, "12345678": true,
	"123456789": true, "1234567890": true, "qwerty123": true, "qwertyuiop": true,
	"iloveyou": true, "sunshine": true, "princess": true, "football": true,
	"baseball": true, "welcome1": true, "abc12345": true, "letmein1": true,
	"trustno1": true, "superman": true, "passw0rd": true, "p@ssw0rd": true,
	"11111111": true, "00000000": true, "admin123": true, "changeme": true,
	"starwars": true, "whatever": true, "dragon123": true, "monkey123": true,
}

// HashPassword generates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// ValidatePassword applies the strength rules and returns every failing
// rule's message. An empty result means the password is acceptable.
func ValidatePassword(password, username, email string) []string {
	var problems []string

	if len(password) > MaxPasswordBytes {
		problems = append(problems, fmt.Sprintf("This password is too long. It must contain at most %d bytes.", MaxPasswordBytes))
	}
	if len([]rune(password)) < MinPasswordLength {
		problems = append(problems, fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLength))
	}
	if tooSimilar(password, username) {
		problems = append(problems, "The password is too similar to the username.")
	} else if local, _, _ := strings.Cut(email, "@"); tooSimilar(password, local) {
		problems = append(problems, "The password is too similar to the email address.")
	}
	if commonPasswords[strings.ToLower(password)] {
		problems = append(problems, "This password is too common.")
	}
	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		problems = append(problems, "This password is entirely numeric.")
	}
	return problems
}

// tooSimilar rejects passwords that contain the attribute, or that the
// attribute mostly contains. Attributes shorter than 3 characters are ignored.
func tooSimilar(password, attr string) bool {
	p := strings.ToLower(password)
	a := strings.ToLower(strings.TrimSpace(attr))
	if len(a) < 3 || p == "" {
		return false
	}
	if strings.Contains(p, a) {
		return true
	}
	return strings.Contains(a, p) && len(p)*10 >= len(a)*7
}
