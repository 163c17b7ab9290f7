package auth

import (
	"testing"
	"time"
)

func TestRoleIsValid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleGuest, true},
		{RoleUser, true},
		{RolePremium, true},
		{RoleAdmin, true},
		{Role(""), false},
		{Role("superadmin"), false},
		{Role("Admin"), false}, // case-sensitive
	}

	for _, tt := range tests {
		if got := tt.role.IsValid(); got != tt.want {
			t.Errorf("Role(%q).IsValid() = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestSessionValid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	session := &Session{
		Token:     "session_1_abcdefghi_AAAAAAAA",
		User:      User{ID: "u-1", Role: RoleUser},
		ExpiresAt: now,
	}

	if !session.Valid(now) {
		t.Error("Valid() = false at exactly ExpiresAt, want true")
	}
	if !session.Valid(now.Add(-time.Hour)) {
		t.Error("Valid() = false before expiry, want true")
	}
	if session.Valid(now.Add(time.Nanosecond)) {
		t.Error("Valid() = true after expiry, want false")
	}
}
