package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/wellman-connect/wellauth/internal/adapter/outbound/state"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRegisterAndAuthenticate(t *testing.T) {
	accounts := NewAccounts(state.NewMemoryStorage(), testLogger())

	created, err := accounts.Register("Ada@Example.com", "correct horse battery", "Ada", "Lovelace")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if created.ID == "" {
		t.Error("Register() returned empty ID")
	}
	if created.Email != "ada@example.com" {
		t.Errorf("Email = %q, want lowercased ada@example.com", created.Email)
	}
	if created.Role != RoleUser {
		t.Errorf("Role = %q, want user", created.Role)
	}
	if created.PasswordHash != "" {
		t.Error("Register() leaked the password hash")
	}

	got, err := accounts.Authenticate("ada@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("Authenticate() ID = %q, want %q", got.ID, created.ID)
	}
	if got.PasswordHash != "" {
		t.Error("Authenticate() leaked the password hash")
	}
}

func TestAuthenticateEmailCaseInsensitive(t *testing.T) {
	accounts := NewAccounts(state.NewMemoryStorage(), testLogger())
	if _, err := accounts.Register("ada@example.com", "correct horse battery", "Ada", "Lovelace"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := accounts.Authenticate("ADA@EXAMPLE.COM", "correct horse battery"); err != nil {
		t.Errorf("Authenticate() with uppercased email error = %v", err)
	}
}

func TestAuthenticateRejections(t *testing.T) {
	accounts := NewAccounts(state.NewMemoryStorage(), testLogger())
	if _, err := accounts.Register("ada@example.com", "correct horse battery", "Ada", "Lovelace"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "ada@example.com", "wrong"},
		{"unknown email", "nobody@example.com", "correct horse battery"},
		{"empty password", "ada@example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := accounts.Authenticate(tt.email, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	accounts := NewAccounts(state.NewMemoryStorage(), testLogger())
	if _, err := accounts.Register("ada@example.com", "correct horse battery", "Ada", "Lovelace"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := accounts.Register("ADA@example.com", "another password", "A", "L")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Register() duplicate error = %v, want ErrEmailTaken", err)
	}

	if n, _ := accounts.Count(); n != 1 {
		t.Errorf("Count() = %d after rejected duplicate, want 1", n)
	}
}

func TestRegisterPersistsHashedPassword(t *testing.T) {
	storage := state.NewMemoryStorage()
	accounts := NewAccounts(storage, testLogger())
	if _, err := accounts.Register("ada@example.com", "correct horse battery", "Ada", "Lovelace"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	data, ok, _ := storage.Get(state.KeyUsers)
	if !ok {
		t.Fatal("user collection not persisted")
	}
	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		t.Fatalf("unmarshal users: %v", err)
	}
	if users[0].PasswordHash == "" {
		t.Error("persisted entry has no password hash")
	}
	if users[0].PasswordHash == "correct horse battery" {
		t.Error("password persisted in cleartext")
	}
}

func TestRegisterRefusesMalformedCollection(t *testing.T) {
	storage := state.NewMemoryStorage()
	if err := storage.Set(state.KeyUsers, []byte(`{broken`)); err != nil {
		t.Fatalf("seed users: %v", err)
	}

	accounts := NewAccounts(storage, testLogger())
	if _, err := accounts.Register("ada@example.com", "correct horse battery", "Ada", "Lovelace"); err == nil {
		t.Error("Register() over malformed collection = nil, want error")
	}
}
