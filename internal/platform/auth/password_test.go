package auth

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		username string
		email    string
		want     []string
	}{
		{"strong", "Str0ng!pw", "alice", "a@x.com", nil},
		{"too short", "Zq9!", "alice", "a@x.com", []string{"too short"}},
		{"common and numeric", "12345678", "alice", "a@x.com", []string{"too common", "entirely numeric"}},
		{"similar to username", "alice2024x", "alice", "a@x.com", []string{"similar to the username"}},
		{"similar to email", "bobbytables9", "drlee", "bobbytables@x.com", []string{"similar to the email"}},
		{"short attribute ignored", "ab#Q7wert", "ab", "ab@x.com", nil},
		{"too long", strings.Repeat("xY7!", 19), "alice", "a@x.com", []string{"too long"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidatePassword(tt.password, tt.username, tt.email)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d problems, got %d: %v", len(tt.want), len(got), got)
			}
			for i, fragment := range tt.want {
				if !strings.Contains(got[i], fragment) {
					t.Errorf("problem %d: expected %q to contain %q", i, got[i], fragment)
				}
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("Str0ng!pw")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hashed == "Str0ng!pw" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword("Str0ng!pw", hashed) {
		t.Error("expected password to match its hash")
	}
	if CheckPassword("wrong-password", hashed) {
		t.Error("expected wrong password to fail")
	}
}
