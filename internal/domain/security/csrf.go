package security

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wellman-connect/wellauth/internal/adapter/outbound/state"
)

// CSRFManager owns the single process-wide CSRF token. The token is cached
// in memory and mirrored into persistent storage under state.KeyCSRFToken,
// so it survives restarts. Client-side only; without server verification
// this is an integrity hint, not a defense.
type CSRFManager struct {
	mu      sync.Mutex
	cached  string
	storage state.Storage
	logger  *slog.Logger
	now     func() time.Time
}

// NewCSRFManager creates a CSRFManager over the given storage.
func NewCSRFManager(storage state.Storage, logger *slog.Logger) *CSRFManager {
	return &CSRFManager{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the wall clock. For tests.
func (m *CSRFManager) WithClock(now func() time.Time) *CSRFManager {
	m.now = now
	return m
}

// Generate mints a new token, overwriting any prior one in memory and in
// storage. Format: csrf_<millis>_<9 lowercase-alnum>.
func (m *CSRFManager) Generate() (string, error) {
	random, err := randAlnum(9)
	if err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	token := fmt.Sprintf("csrf_%d_%s", m.now().UnixMilli(), random)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cached = token
	if err := m.storage.Set(state.KeyCSRFToken, []byte(token)); err != nil {
		return "", fmt.Errorf("persist csrf token: %w", err)
	}
	return token, nil
}

// Token returns the current token, lazily loading it from storage when the
// in-memory cache is empty. Returns "" when no token has ever been generated.
func (m *CSRFManager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokenLocked()
}

// Validate reports whether candidate equals the currently stored token.
// A candidate is never valid when no token exists.
func (m *CSRFManager) Validate(candidate string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := m.tokenLocked()
	return token != "" && candidate == token
}

// tokenLocked loads the cache from storage if needed. Callers hold m.mu.
// Storage failures degrade to "no token" rather than propagating.
func (m *CSRFManager) tokenLocked() string {
	if m.cached != "" {
		return m.cached
	}
	value, ok, err := m.storage.Get(state.KeyCSRFToken)
	if err != nil {
		m.logger.Warn("failed to load csrf token", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	m.cached = string(value)
	return m.cached
}
