// Package route decides whether a navigation target may be entered.
// The guard consults the session store once per evaluation and answers
// with either the target itself or a redirect.
package route

import (
	"log/slog"

	"github.com/wellman-connect/wellauth/internal/domain/auth"
)

// Route names referenced by guard decisions.
const (
	NameLogin   = "login"
	NameSignup  = "signup"
	NameHome    = "home"
	NameAccount = "account"
)

// Query keys attached to redirect decisions.
const (
	QueryRedirect = "redirect"
	QueryError    = "error"
)

// ErrAccessDenied is the query value carried by an admin rejection.
const ErrAccessDenied = "access_denied"

// Meta carries the access requirements of a route.
type Meta struct {
	RequiresAuth  bool `json:"requiresAuth"`
	RequiresAdmin bool `json:"requiresAdmin"`
}

// Target describes the navigation being evaluated.
type Target struct {
	// Name is the route's symbolic name.
	Name string
	// FullPath is the complete path including query, used as the
	// post-login redirect destination.
	FullPath string
	// Meta holds the route's access requirements.
	Meta Meta
}

// Decision is the guard's verdict: proceed to the target, or go
// somewhere else instead.
type Decision struct {
	// Allowed is true when navigation proceeds to the target.
	Allowed bool
	// RedirectTo names the route to go to instead, when not allowed.
	RedirectTo string
	// Query carries query parameters for the redirect.
	Query map[string]string
}

// Allow is the verdict that lets navigation proceed.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Redirect builds a verdict that diverts navigation to the named route.
func Redirect(name string, query map[string]string) Decision {
	return Decision{RedirectTo: name, Query: query}
}

// SessionState is the slice of the session store the guard reads.
type SessionState interface {
	// EnsureInitialized loads the persisted session when that has not
	// happened yet in this process.
	EnsureInitialized()
	// IsAuthenticated reports whether a live session exists.
	IsAuthenticated() bool
	// Role returns the current role, RoleGuest when anonymous.
	Role() auth.Role
}

// Guard evaluates navigations against the session state.
type Guard struct {
	sessions SessionState
	logger   *slog.Logger
}

// NewGuard creates a Guard over the given session state.
func NewGuard(sessions SessionState, logger *slog.Logger) *Guard {
	return &Guard{sessions: sessions, logger: logger}
}

// Evaluate decides the navigation to target. Checks run in a fixed
// order and the first match wins:
//
//  1. A route requiring auth, visited anonymously, redirects to login
//     with the target's full path in the redirect query parameter.
//  2. A route requiring admin, visited by a non-admin, redirects home
//     with error=access_denied.
//  3. The login and signup routes, visited while authenticated,
//     redirect to the account screen.
//  4. Everything else is allowed.
//
// Authentication is read exactly once per evaluation, so a session that
// expires mid-check cannot produce a torn verdict.
func (g *Guard) Evaluate(target Target) Decision {
	g.sessions.EnsureInitialized()

	authenticated := g.sessions.IsAuthenticated()

	if target.Meta.RequiresAuth && !authenticated {
		g.logger.Debug("guard: auth required", "route", target.Name)
		return Redirect(NameLogin, map[string]string{QueryRedirect: target.FullPath})
	}

	if target.Meta.RequiresAdmin && g.sessions.Role() != auth.RoleAdmin {
		g.logger.Warn("guard: admin required", "route", target.Name, "role", g.sessions.Role())
		return Redirect(NameHome, map[string]string{QueryError: ErrAccessDenied})
	}

	if authenticated && (target.Name == NameLogin || target.Name == NameSignup) {
		g.logger.Debug("guard: already authenticated", "route", target.Name)
		return Redirect(NameAccount, nil)
	}

	return Allow()
}
