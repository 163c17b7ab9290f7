// Package session owns the single current session: its persistence,
// expiry, refresh, and every mutation (login, logout, profile update,
// role change).
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wellman-connect/wellauth/internal/adapter/outbound/state"
	"github.com/wellman-connect/wellauth/internal/domain/auth"
	"github.com/wellman-connect/wellauth/internal/domain/security"
)

// DefaultTTL is how long a session lives after login or refresh.
const DefaultTTL = 24 * time.Hour

// DefaultRefreshInterval is how often the auto-refresh timer fires.
const DefaultRefreshInterval = 30 * time.Minute

// LoginRoute is the route name the store navigates to after logout.
const LoginRoute = "login"

// Navigator is the navigation collaborator the store notifies on logout.
// The screen layer supplies the current route name and performs redirects.
type Navigator interface {
	// Current returns the name of the active route.
	Current() string
	// Navigate moves to the named route with an optional query.
	Navigate(name string, query map[string]string)
}

// ProfileUpdate carries partial user fields for UpdateUserProfile.
// Nil fields are left untouched; set fields win over current values.
type ProfileUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// Store is the session state machine: Anonymous until a valid session is
// loaded or created, Authenticated while one exists and is unexpired.
// At most one session exists at a time.
//
// All methods are safe for concurrent use; the auto-refresh goroutine and
// direct calls serialize on an internal mutex.
type Store struct {
	mu          sync.Mutex
	session     *auth.Session
	initialized bool

	storage state.Storage
	tokens  *security.IDGenerator
	nav     Navigator
	logger  *slog.Logger
	now     func() time.Time

	ttl             time.Duration
	refreshInterval time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// Option is a functional option for configuring a Store.
type Option func(*Store)

// WithClock overrides the wall clock. For tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithTTL overrides the session lifetime. Default 24h.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithRefreshInterval overrides the auto-refresh period. Default 30m.
func WithRefreshInterval(interval time.Duration) Option {
	return func(s *Store) { s.refreshInterval = interval }
}

// WithNavigator sets the navigation collaborator notified on logout.
// Without one, logout skips the redirect.
func WithNavigator(nav Navigator) Option {
	return func(s *Store) { s.nav = nav }
}

// NewStore creates a Store over the given storage and token generator.
// The store starts Anonymous; call InitializeAuth to load a persisted
// session.
func NewStore(storage state.Storage, tokens *security.IDGenerator, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		storage:         storage,
		tokens:          tokens,
		logger:          logger,
		now:             time.Now,
		ttl:             DefaultTTL,
		refreshInterval: DefaultRefreshInterval,
		stopChan:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitializeAuth loads the persisted session record. A valid record
// transitions the store to Authenticated; an expired or malformed one is
// cleared and the store stays Anonymous. Safe to call multiple times; only
// the first call reads storage.
func (s *Store) InitializeAuth() {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true

	navigate := s.loadLocked()
	s.mu.Unlock()

	if navigate {
		s.redirectToLogin()
	}
}

// EnsureInitialized runs InitializeAuth when it has never run.
// The route guard calls this before every decision.
func (s *Store) EnsureInitialized() {
	s.InitializeAuth()
}

// loadLocked reads and applies the persisted session. Returns true when a
// stale record was cleared and the logout redirect should fire. Callers
// hold s.mu.
func (s *Store) loadLocked() bool {
	data, ok, err := s.storage.Get(state.KeySession)
	if err != nil {
		s.logger.Warn("failed to read persisted session", "error", err)
		return false
	}
	if !ok {
		return false
	}

	var restored auth.Session
	if err := json.Unmarshal(data, &restored); err != nil || restored.Token == "" {
		// Corrupt record: treat as absent and clean up.
		s.logger.Warn("clearing malformed session record", "error", err)
		return s.logoutLocked()
	}

	if !restored.Valid(s.now()) {
		s.logger.Info("persisted session expired", "token", restored.Token)
		return s.logoutLocked()
	}

	s.session = &restored
	s.logger.Debug("session restored", "user_id", restored.User.ID, "expires_at", restored.ExpiresAt)
	return false
}

// IsAuthenticated reports whether a live session exists. Reading it
// enforces expiry lazily: an expired session triggers a silent logout
// before false is returned.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return false
	}
	if s.session.Valid(s.now()) {
		s.mu.Unlock()
		return true
	}

	navigate := s.logoutLocked()
	s.mu.Unlock()

	if navigate {
		s.redirectToLogin()
	}
	return false
}

// CurrentUser returns a copy of the logged-in user, or nil when anonymous.
// Pure projection: expiry is not evaluated here.
func (s *Store) CurrentUser() *auth.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	user := s.session.User
	return &user
}

// Role returns the current session's role, or RoleGuest when anonymous.
func (s *Store) Role() auth.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return auth.RoleGuest
	}
	return s.session.User.Role
}

// IsAdmin reports whether the current role is admin.
func (s *Store) IsAdmin() bool { return s.Role() == auth.RoleAdmin }

// IsPremium reports whether the current role is premium.
func (s *Store) IsPremium() bool { return s.Role() == auth.RolePremium }

// IsUser reports whether the current role is the standard user role.
func (s *Store) IsUser() bool { return s.Role() == auth.RoleUser }

// Login creates a fresh session for the user: new token, role defaulted to
// RoleUser when unset, expiry now+TTL. The session is persisted and the
// matching entry in the persisted user collection gets its lastLogin
// stamped, when such an entry exists.
func (s *Store) Login(user auth.User) error {
	token, err := s.tokens.Generate()
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if user.Role == "" {
		user.Role = auth.RoleUser
	}
	user.LastLogin = now

	s.session = &auth.Session{
		Token:     token,
		User:      user,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.persistLocked(); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	s.updateUserEntryLocked(user.ID, func(entry *auth.User) {
		entry.LastLogin = now
	})

	s.logger.Info("login", "user_id", user.ID, "role", user.Role)
	return nil
}

// Logout clears the session, removes the persisted record, and navigates
// to the login screen unless it is already active. Safe to call when
// already logged out.
func (s *Store) Logout() {
	s.mu.Lock()
	navigate := s.logoutLocked()
	s.mu.Unlock()

	if navigate {
		s.redirectToLogin()
	}
}

// logoutLocked clears state and returns whether the login redirect should
// fire. Callers hold s.mu; the navigation itself must happen after the
// lock is released so a navigator calling back into the store cannot
// deadlock.
func (s *Store) logoutLocked() bool {
	s.session = nil
	if err := s.storage.Delete(state.KeySession); err != nil {
		s.logger.Warn("failed to remove persisted session", "error", err)
	}
	return s.nav != nil && s.nav.Current() != LoginRoute
}

func (s *Store) redirectToLogin() {
	s.nav.Navigate(LoginRoute, nil)
}

// RefreshSession extends the current session's expiry to now+TTL and
// re-persists it. No-op when anonymous; no other field changes.
func (s *Store) RefreshSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}

	s.session.ExpiresAt = s.now().UTC().Add(s.ttl)
	if err := s.persistLocked(); err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	return nil
}

// UpdateUserProfile merges the set fields of updates into the current
// session's user and into the matching persisted user-collection entry.
// No-op when anonymous.
func (s *Store) UpdateUserProfile(updates ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}

	applyUpdate(&s.session.User, updates)
	if err := s.persistLocked(); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	s.updateUserEntryLocked(s.session.User.ID, func(entry *auth.User) {
		applyUpdate(entry, updates)
	})
	return nil
}

// ChangeUserRole sets the current user's role and re-persists the session
// and the matching user-collection entry. No-op when anonymous.
func (s *Store) ChangeUserRole(role auth.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}

	s.session.User.Role = role
	if err := s.persistLocked(); err != nil {
		return fmt.Errorf("change role: %w", err)
	}

	s.updateUserEntryLocked(s.session.User.ID, func(entry *auth.User) {
		entry.Role = role
	})

	s.logger.Info("role changed", "user_id", s.session.User.ID, "role", role)
	return nil
}

// ValidateToken reports whether token is non-empty and matches the session
// token format. Purely syntactic, independent of the live session.
func (s *Store) ValidateToken(token string) bool {
	return token != "" && security.ValidateSessionID(token)
}

// StartAutoRefresh launches the repeating refresh timer. Every refresh
// interval it extends the session while one is authenticated. A failed
// refresh is logged and never crashes the loop. Stop cancels the timer.
func (s *Store) StartAutoRefresh() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				if s.IsAuthenticated() {
					if err := s.RefreshSession(); err != nil {
						s.logger.Warn("auto refresh failed", "error", err)
					}
				}
			}
		}
	}()
}

// Stop cancels the auto-refresh timer and waits for it to exit. Safe to
// call multiple times, and before StartAutoRefresh.
func (s *Store) Stop() {
	s.once.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
}

// persistLocked writes the current session to storage. Callers hold s.mu.
func (s *Store) persistLocked() error {
	data, err := json.Marshal(s.session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.storage.Set(state.KeySession, data); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// updateUserEntryLocked applies fn to the user-collection entry with the
// given id and re-persists the collection. Missing entry or malformed
// collection is a no-op (the collection is cleared when unreadable).
// Callers hold s.mu.
func (s *Store) updateUserEntryLocked(id string, fn func(*auth.User)) {
	data, ok, err := s.storage.Get(state.KeyUsers)
	if err != nil {
		s.logger.Warn("failed to read user collection", "error", err)
		return
	}
	if !ok {
		return
	}

	var users []auth.User
	if err := json.Unmarshal(data, &users); err != nil {
		s.logger.Warn("clearing malformed user collection", "error", err)
		if delErr := s.storage.Delete(state.KeyUsers); delErr != nil {
			s.logger.Warn("failed to clear user collection", "error", delErr)
		}
		return
	}

	for i := range users {
		if users[i].ID == id {
			fn(&users[i])
			updated, err := json.Marshal(users)
			if err != nil {
				s.logger.Warn("failed to marshal user collection", "error", err)
				return
			}
			if err := s.storage.Set(state.KeyUsers, updated); err != nil {
				s.logger.Warn("failed to persist user collection", "error", err)
			}
			return
		}
	}
}

// applyUpdate merges the set fields of updates into user.
func applyUpdate(user *auth.User, updates ProfileUpdate) {
	if updates.Email != nil {
		user.Email = *updates.Email
	}
	if updates.FirstName != nil {
		user.FirstName = *updates.FirstName
	}
	if updates.LastName != nil {
		user.LastName = *updates.LastName
	}
}
