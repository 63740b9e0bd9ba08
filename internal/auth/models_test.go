package auth

import (
	"strings"
	"testing"
)

func TestPasswordSetAndMatches(t *testing.T) {
	var p Password

	if err := p.Set("correct horse battery"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	match, err := p.Matches("correct horse battery")
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if !match {
		t.Error("expected the original password to match")
	}

	match, err = p.Matches("wrong password")
	if err != nil {
		t.Fatalf("Matches (wrong): %v", err)
	}
	if match {
		t.Error("expected a wrong password not to match")
	}
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantOK   bool
	}{
		{"valid", "Asha", "asha@example.com", "secret1", true},
		{"empty name", "", "asha@example.com", "secret1", false},
		{"long name", strings.Repeat("a", 51), "asha@example.com", "secret1", false},
		{"bad email", "Asha", "not-an-email", "secret1", false},
		{"empty email", "Asha", "", "secret1", false},
		{"short password", "Asha", "asha@example.com", "12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := ValidateRegistration(tt.userName, tt.email, tt.password)
			if ok := len(problems) == 0; ok != tt.wantOK {
				t.Errorf("problems = %v, wantOK = %v", problems, tt.wantOK)
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	if problems := ValidateLogin("asha@example.com", "secret1"); len(problems) != 0 {
		t.Errorf("unexpected problems: %v", problems)
	}
	if problems := ValidateLogin("", "secret1"); len(problems) == 0 {
		t.Error("expected missing email to be rejected")
	}
	if problems := ValidateLogin("asha@example.com", ""); len(problems) == 0 {
		t.Error("expected missing password to be rejected")
	}
}

func TestAnonymousUser(t *testing.T) {
	if !AnonymousUser.IsAnonymous() {
		t.Error("expected AnonymousUser to be anonymous")
	}
	if (&User{ID: 1}).IsAnonymous() {
		t.Error("expected a real user not to be anonymous")
	}
}
