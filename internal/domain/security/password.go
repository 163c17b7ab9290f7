package security

import (
	"errors"
	"fmt"

	"github.com/alexedwards/argon2id"
)

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("empty password")

// argon2idParams defines OWASP minimum parameters for Argon2id.
// Memory: 47 MiB, Iterations: 1, Parallelism: 1
var argon2idParams = &argon2id.Params{
	Memory:      47 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// HashPassword returns a salted Argon2id hash of the password in PHC format.
// Format: $argon2id$v=19$m=48128,t=1,p=1$<salt>$<hash>
//
// The predecessor of this code stored a reversible encoding; the hash/verify
// contract is unchanged but hashes are now one-way and salted.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	return argon2id.CreateHash(password, argon2idParams)
}

// VerifyPassword reports whether password matches the stored hash.
// Returns (false, error) for malformed hashes, never panics.
func VerifyPassword(password, hash string) (bool, error) {
	return safeArgon2idCompare(password, hash)
}

// safeArgon2idCompare wraps argon2id.ComparePasswordAndHash with panic
// recovery. The underlying argon2 library panics on malformed hashes with
// invalid parameters (e.g. t=0 rounds); those become errors instead.
func safeArgon2idCompare(password, hash string) (match bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			match = false
			err = fmt.Errorf("invalid argon2id hash parameters: %v", r)
		}
	}()
	return argon2id.ComparePasswordAndHash(password, hash)
}
