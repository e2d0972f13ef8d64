// Package auth provides authentication primitives for the student registry:
// password hashing and verification, JWT creation/verification for browser
// sessions, and API key generation/validation for programmatic clients.
// See internal/middleware/auth.go for the request-time logic that uses these.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// SaltBytes is the number of random salt bytes generated per credential.
// Hex-encoded this yields the 32-character salt prefix of the stored form.
const SaltBytes = 16

// ErrMalformedHash is returned by ParseStoredHash for input that is neither a
// salted stored form nor a plausible legacy digest.
var ErrMalformedHash = errors.New("auth: malformed stored password hash")

// StoredHash is a parsed stored credential. Two variants exist:
//
//   - salted:   "salt_hex:sha256_hex", the only form this code ever writes
//   - legacy:   a bare sha256 hex digest with no salt, accepted read-only for
//     records imported from older installations
//
// The unsalted branch is a backward-compatibility policy, not an alternative
// write path: nothing in this package produces it.
type StoredHash struct {
	Salt   string // hex-encoded salt; empty for legacy unsalted records
	Digest string // hex-encoded SHA-256 digest
}

// Legacy reports whether the credential is an unsalted legacy record.
func (h StoredHash) Legacy() bool {
	return h.Salt == ""
}

// String renders the credential back to its stored form.
func (h StoredHash) String() string {
	if h.Legacy() {
		return h.Digest
	}
	return h.Salt + ":" + h.Digest
}

// ParseStoredHash splits a stored form into its tagged variant. The presence
// of a colon selects the salted branch; its absence selects the legacy one.
func ParseStoredHash(stored string) (StoredHash, error) {
	if stored == "" {
		return StoredHash{}, ErrMalformedHash
	}

	if idx := strings.IndexByte(stored, ':'); idx >= 0 {
		h := StoredHash{Salt: stored[:idx], Digest: stored[idx+1:]}
		if h.Salt == "" || h.Digest == "" {
			return StoredHash{}, ErrMalformedHash
		}
		return h, nil
	}

	return StoredHash{Digest: stored}, nil
}

// HashPassword derives the stored form for a new credential: a fresh random
// salt and SHA-256 over plaintext+salt, rendered as "salt_hex:sha256_hex".
//
// No key stretching (PBKDF2/bcrypt/argon2) is applied. This is a known
// weakness kept deliberately: the digest scheme is fixed by the stored-hash
// format of existing databases, and changing it would invalidate every
// credential already on disk. Flag it in security reviews; do not "fix" it
// here without a migration.
func HashPassword(plaintext string) (string, error) {
	salt := make([]byte, SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	saltHex := hex.EncodeToString(salt)
	return StoredHash{Salt: saltHex, Digest: digestHex(plaintext + saltHex)}.String(), nil
}

// VerifyPassword checks plaintext against a stored form, selecting the salted
// or legacy branch from the format. Malformed input of any shape yields false
// rather than an error: a wrong credential and an unreadable one are the same
// authentication outcome.
func VerifyPassword(plaintext, stored string) bool {
	h, err := ParseStoredHash(stored)
	if err != nil {
		return false
	}

	var computed string
	if h.Legacy() {
		computed = digestHex(plaintext)
	} else {
		computed = digestHex(plaintext + h.Salt)
	}

	return subtle.ConstantTimeCompare([]byte(computed), []byte(strings.ToLower(h.Digest))) == 1
}

func digestHex(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
