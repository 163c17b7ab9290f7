// Package auth contains the domain types for identity and authorization.
package auth

import (
	"time"
)

// Role represents a user role for authorization purposes.
type Role string

const (
	// RoleGuest is the role of an anonymous visitor (no session).
	RoleGuest Role = "guest"
	// RoleUser has standard access to authenticated screens.
	RoleUser Role = "user"
	// RolePremium has access to premium content in addition to user access.
	RolePremium Role = "premium"
	// RoleAdmin has full access, including admin screens.
	RoleAdmin Role = "admin"
)

// IsValid returns true if the role is a known valid role.
func (r Role) IsValid() bool {
	switch r {
	case RoleGuest, RoleUser, RolePremium, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is the profile record carried inside a session and persisted in the
// user collection. Fields are stored sanitized.
type User struct {
	// ID is the unique identifier for this user.
	ID string `json:"id"`
	// Email is the lowercased, validated email address.
	Email string `json:"email"`
	// FirstName is the sanitized given name.
	FirstName string `json:"firstName"`
	// LastName is the sanitized family name.
	LastName string `json:"lastName"`
	// Role is the authorization role. Defaults to RoleUser on login.
	Role Role `json:"role"`
	// LastLogin is when this user last logged in (UTC).
	LastLogin time.Time `json:"lastLogin"`
	// PasswordHash is the PHC-encoded password hash. Present only in the
	// persisted user collection, never in session records.
	PasswordHash string `json:"passwordHash,omitempty"`
}

// Session is the authoritative record of the current logged-in identity.
// It is either fully populated or absent; there are no partial states.
type Session struct {
	// Token is the opaque session identifier, unique per login.
	Token string `json:"token"`
	// User is the logged-in identity.
	User User `json:"user"`
	// ExpiresAt is the absolute expiry timestamp (UTC).
	ExpiresAt time.Time `json:"expiresAt"`
}

// Valid reports whether the session is still live at the given instant.
// This is the pure predicate; expiry-triggered state transitions are the
// session store's job.
func (s *Session) Valid(now time.Time) bool {
	return !now.After(s.ExpiresAt)
}
