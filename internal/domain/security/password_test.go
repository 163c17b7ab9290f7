package security

import (
	"strings"
	"testing"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	passwords := []string{"Password1", "p", "correct horse battery staple 9X", "päss wörd Ü1"}

	for _, p := range passwords {
		hash, err := HashPassword(p)
		if err != nil {
			t.Fatalf("HashPassword(%q) error = %v", p, err)
		}
		if !strings.HasPrefix(hash, "$argon2id$") {
			t.Errorf("HashPassword(%q) = %q, want PHC argon2id format", p, hash)
		}

		match, err := VerifyPassword(p, hash)
		if err != nil {
			t.Fatalf("VerifyPassword() error = %v", err)
		}
		if !match {
			t.Errorf("VerifyPassword(%q, hash(%q)) = false, want true", p, p)
		}
	}
}

func TestVerifyPassword_RejectsWrongPassword(t *testing.T) {
	hash, err := HashPassword("Password1")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	for _, wrong := range []string{"Password2", "password1", "", "Password1 "} {
		match, err := VerifyPassword(wrong, hash)
		if err != nil {
			t.Fatalf("VerifyPassword(%q) error = %v", wrong, err)
		}
		if match {
			t.Errorf("VerifyPassword(%q, hash(Password1)) = true, want false", wrong)
		}
	}
}

func TestHashPassword_SaltedHashesDiffer(t *testing.T) {
	h1, err := HashPassword("Password1")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	h2, err := HashPassword("Password1")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical, want distinct salts")
	}
}

func TestHashPassword_EmptyPassword(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Error("HashPassword(\"\") error = nil, want ErrEmptyPassword")
	}
}

func TestVerifyPassword_MalformedHashNeverPanics(t *testing.T) {
	malformed := []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=0,t=0,p=0$$",
		"$argon2id$v=19$m=47104,t=1,p=1$short",
	}

	for _, hash := range malformed {
		match, err := VerifyPassword("Password1", hash)
		if match {
			t.Errorf("VerifyPassword with malformed hash %q = true, want false", hash)
		}
		if err == nil {
			t.Errorf("VerifyPassword with malformed hash %q error = nil, want error", hash)
		}
	}
}
