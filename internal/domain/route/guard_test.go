package route

import (
	"log/slog"
	"os"
	"testing"

	"github.com/wellman-connect/wellauth/internal/domain/auth"
)

// fakeSession is a canned session state for guard tests.
type fakeSession struct {
	authenticated bool
	role          auth.Role
	initCalls     int
	authReads     int
}

func (f *fakeSession) EnsureInitialized() { f.initCalls++ }

func (f *fakeSession) IsAuthenticated() bool {
	f.authReads++
	return f.authenticated
}

func (f *fakeSession) Role() auth.Role {
	if f.role == "" {
		return auth.RoleGuest
	}
	return f.role
}

func newTestGuard(s SessionState) *Guard {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewGuard(s, logger)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name         string
		session      fakeSession
		target       Target
		wantAllowed  bool
		wantRedirect string
		wantQuery    map[string]string
	}{
		{
			name:        "public route anonymous",
			session:     fakeSession{},
			target:      Target{Name: "home", FullPath: "/"},
			wantAllowed: true,
		},
		{
			name:         "protected route anonymous redirects to login",
			session:      fakeSession{},
			target:       Target{Name: "account", FullPath: "/account", Meta: Meta{RequiresAuth: true}},
			wantRedirect: NameLogin,
			wantQuery:    map[string]string{QueryRedirect: "/account"},
		},
		{
			name:         "redirect query preserves full path",
			session:      fakeSession{},
			target:       Target{Name: "orders", FullPath: "/orders?page=2", Meta: Meta{RequiresAuth: true}},
			wantRedirect: NameLogin,
			wantQuery:    map[string]string{QueryRedirect: "/orders?page=2"},
		},
		{
			name:        "protected route authenticated",
			session:     fakeSession{authenticated: true, role: auth.RoleUser},
			target:      Target{Name: "account", FullPath: "/account", Meta: Meta{RequiresAuth: true}},
			wantAllowed: true,
		},
		{
			name:         "admin route as user redirects home with error",
			session:      fakeSession{authenticated: true, role: auth.RoleUser},
			target:       Target{Name: "admin", FullPath: "/admin", Meta: Meta{RequiresAuth: true, RequiresAdmin: true}},
			wantRedirect: NameHome,
			wantQuery:    map[string]string{QueryError: ErrAccessDenied},
		},
		{
			name:         "admin route as premium still denied",
			session:      fakeSession{authenticated: true, role: auth.RolePremium},
			target:       Target{Name: "admin", FullPath: "/admin", Meta: Meta{RequiresAuth: true, RequiresAdmin: true}},
			wantRedirect: NameHome,
			wantQuery:    map[string]string{QueryError: ErrAccessDenied},
		},
		{
			name:        "admin route as admin",
			session:     fakeSession{authenticated: true, role: auth.RoleAdmin},
			target:      Target{Name: "admin", FullPath: "/admin", Meta: Meta{RequiresAuth: true, RequiresAdmin: true}},
			wantAllowed: true,
		},
		{
			name:         "admin route anonymous hits auth check first",
			session:      fakeSession{},
			target:       Target{Name: "admin", FullPath: "/admin", Meta: Meta{RequiresAuth: true, RequiresAdmin: true}},
			wantRedirect: NameLogin,
			wantQuery:    map[string]string{QueryRedirect: "/admin"},
		},
		{
			name:         "login while authenticated redirects to account",
			session:      fakeSession{authenticated: true, role: auth.RoleUser},
			target:       Target{Name: NameLogin, FullPath: "/login"},
			wantRedirect: NameAccount,
		},
		{
			name:         "signup while authenticated redirects to account",
			session:      fakeSession{authenticated: true, role: auth.RoleUser},
			target:       Target{Name: NameSignup, FullPath: "/signup"},
			wantRedirect: NameAccount,
		},
		{
			name:        "login while anonymous",
			session:     fakeSession{},
			target:      Target{Name: NameLogin, FullPath: "/login"},
			wantAllowed: true,
		},
		{
			name:        "signup while anonymous",
			session:     fakeSession{},
			target:      Target{Name: NameSignup, FullPath: "/signup"},
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := newTestGuard(&tt.session)
			got := guard.Evaluate(tt.target)

			if got.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", got.Allowed, tt.wantAllowed)
			}
			if got.RedirectTo != tt.wantRedirect {
				t.Errorf("RedirectTo = %q, want %q", got.RedirectTo, tt.wantRedirect)
			}
			if len(tt.wantQuery) > 0 {
				for k, v := range tt.wantQuery {
					if got.Query[k] != v {
						t.Errorf("Query[%q] = %q, want %q", k, got.Query[k], v)
					}
				}
			}
			if tt.session.initCalls == 0 {
				t.Error("EnsureInitialized not called before the decision")
			}
		})
	}
}

func TestEvaluateReadsAuthenticationOnce(t *testing.T) {
	session := &fakeSession{authenticated: true, role: auth.RoleUser}
	guard := newTestGuard(session)

	guard.Evaluate(Target{Name: NameLogin, FullPath: "/login"})

	if session.authReads != 1 {
		t.Errorf("IsAuthenticated read %d times per evaluation, want 1", session.authReads)
	}
}
