// Package state provides key/value persistence for WellMan auth state.
//
// Three keys are stored: the current session record, the user collection,
// and the CSRF token. Values are opaque blobs to this package; callers
// own the JSON encoding and must treat malformed data on read as absent.
package state

// Storage keys used by the auth core.
const (
	// KeySession holds the JSON-encoded current session record.
	KeySession = "wellman_session"
	// KeyUsers holds the JSON-encoded array of user records.
	KeyUsers = "wellman_users"
	// KeyCSRFToken holds the raw CSRF token string.
	KeyCSRFToken = "wellman_csrf_token"
)

// Storage is the persistent key/value collaborator of the auth core.
// Implementations: FileStorage (prod), MemoryStorage (tests, ephemeral runs).
type Storage interface {
	// Get returns the value for key. ok is false when the key is absent.
	// An error is returned only for I/O failures, never for a missing key.
	Get(key string) (value []byte, ok bool, err error)

	// Set stores value under key, overwriting any prior value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}
