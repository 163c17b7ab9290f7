package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/wellman-connect/wellauth/internal/adapter/outbound/state"
	"github.com/wellman-connect/wellauth/internal/domain/security"
)

// ErrEmailTaken is returned by Register when the email already has an account.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials is returned by Authenticate for an unknown email or
// a wrong password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Accounts is the registry of user accounts persisted in the user
// collection. It owns credential verification; the session store only ever
// sees users that already authenticated.
type Accounts struct {
	mu      sync.Mutex
	storage state.Storage
	logger  *slog.Logger
}

// NewAccounts creates an account registry over the given storage.
func NewAccounts(storage state.Storage, logger *slog.Logger) *Accounts {
	return &Accounts{storage: storage, logger: logger}
}

// Register creates a new account with the given profile and password. The
// password is hashed before the record is persisted; emails are compared
// case-insensitively for uniqueness.
func (a *Accounts) Register(email, password, firstName, lastName string) (User, error) {
	hash, err := security.HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("register: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	users, err := a.loadLocked()
	if err != nil {
		return User{}, fmt.Errorf("register: %w", err)
	}

	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return User{}, ErrEmailTaken
		}
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(email),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         RoleUser,
		PasswordHash: hash,
	}

	users = append(users, user)
	if err := a.saveLocked(users); err != nil {
		return User{}, fmt.Errorf("register: %w", err)
	}

	a.logger.Info("account registered", "user_id", user.ID)

	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies the email/password pair against the persisted
// collection and returns the matching user with the hash stripped.
func (a *Accounts) Authenticate(email, password string) (User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	users, err := a.loadLocked()
	if err != nil {
		return User{}, fmt.Errorf("authenticate: %w", err)
	}

	for _, u := range users {
		if !strings.EqualFold(u.Email, email) {
			continue
		}
		ok, err := security.VerifyPassword(password, u.PasswordHash)
		if err != nil || !ok {
			return User{}, ErrInvalidCredentials
		}
		u.PasswordHash = ""
		return u, nil
	}

	return User{}, ErrInvalidCredentials
}

// Count returns the number of registered accounts.
func (a *Accounts) Count() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	users, err := a.loadLocked()
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

// loadLocked reads the persisted user collection. A missing record is an
// empty collection; a malformed one is an error, not a silent wipe, since
// registration must never clobber existing accounts. Callers hold a.mu.
func (a *Accounts) loadLocked() ([]User, error) {
	data, ok, err := a.storage.Get(state.KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("read user collection: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode user collection: %w", err)
	}
	return users, nil
}

// saveLocked persists the user collection. Callers hold a.mu.
func (a *Accounts) saveLocked(users []User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode user collection: %w", err)
	}
	if err := a.storage.Set(state.KeyUsers, data); err != nil {
		return fmt.Errorf("persist user collection: %w", err)
	}
	return nil
}
