// Package security provides the security primitives of the auth core:
// session token generation and validation, password hashing, CSRF token
// management, and the advisory security audit.
package security

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// sessionIDPattern validates the session token format:
// session_<millis>_<9 lowercase-alnum>_<8 url-safe base64>.
var sessionIDPattern = regexp.MustCompile(`^session_\d+_[a-z0-9]{9}_[A-Za-z0-9_-]{8}$`)

// alnumCharset is the alphabet for the random token segment.
const alnumCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// IDGenerator mints session tokens. Generated tokens embed a
// monotonically-observed millisecond timestamp, cryptographic randomness,
// and a truncated digest of the client fingerprint, so no two tokens from
// one generator are ever equal.
type IDGenerator struct {
	mu          sync.Mutex
	lastMillis  int64
	fingerprint string
	now         func() time.Time
}

// NewIDGenerator creates an IDGenerator for the given client fingerprint
// (typically a user-agent string; entropy only, not security-relevant).
// An empty fingerprint is replaced with "unknown".
func NewIDGenerator(fingerprint string) *IDGenerator {
	if fingerprint == "" {
		fingerprint = "unknown"
	}
	return &IDGenerator{
		fingerprint: fingerprint,
		now:         time.Now,
	}
}

// WithClock overrides the wall clock. For tests.
func (g *IDGenerator) WithClock(now func() time.Time) *IDGenerator {
	g.now = now
	return g
}

// Generate mints a new session token.
// Format: session_<millis>_<9 lowercase-alnum>_<8 url-safe base64>.
// The timestamp segment never repeats or decreases across calls, even when
// the wall clock stalls or steps backwards.
func (g *IDGenerator) Generate() (string, error) {
	g.mu.Lock()
	millis := g.now().UnixMilli()
	if millis <= g.lastMillis {
		millis = g.lastMillis + 1
	}
	g.lastMillis = millis
	g.mu.Unlock()

	random, err := randAlnum(9)
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	return fmt.Sprintf("session_%d_%s_%s", millis, random, fingerprintTag(g.fingerprint)), nil
}

// ValidateSessionID reports whether id matches the session token format.
// Purely syntactic; it says nothing about whether a live session exists.
func ValidateSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// fingerprintTag digests the fingerprint with xxhash and returns the first
// 8 characters of its url-safe base64 encoding.
func fingerprintTag(fingerprint string) string {
	var digest [8]byte
	binary.BigEndian.PutUint64(digest[:], xxhash.Sum64String(fingerprint))
	return base64.RawURLEncoding.EncodeToString(digest[:])[:8]
}

// randAlnum returns n cryptographically random characters from the
// lowercase-alphanumeric alphabet.
func randAlnum(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range raw {
		out[i] = alnumCharset[int(b)%len(alnumCharset)]
	}
	return string(out), nil
}
