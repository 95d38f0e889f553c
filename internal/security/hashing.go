package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// ErrInvalidHash is returned when a stored password hash cannot be parsed.
var ErrInvalidHash = errors.New("invalid password hash")

// ErrPasswordMismatch is returned by Compare when the password does not match.
var ErrPasswordMismatch = errors.New("password mismatch")

const (
	hashPrefix = "pbkdf2_sha256"
	saltLength = 16
	keyLength  = 32
)

// Hasher hashes and verifies passwords using PBKDF2-HMAC-SHA256 with a
// per-user random salt. Callers must not log or persist plaintext passwords.
type Hasher struct {
	Iterations int
}

// NewHasher returns a Hasher with the given iteration count. 10000 is the
// default when iterations is not positive.
func NewHasher(iterations int) *Hasher {
	if iterations <= 0 {
		iterations = 10000
	}
	return &Hasher{Iterations: iterations}
}

// Hash derives a key from password with a fresh random salt and returns an
// encoded string "pbkdf2_sha256$<iterations>$<salt b64>$<key b64>" suitable
// for storage.
func (h *Hasher) Hash(password []byte) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := pbkdf2.Key(password, salt, h.Iterations, keyLength, sha256.New)
	return fmt.Sprintf("%s$%d$%s$%s",
		hashPrefix,
		h.Iterations,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Compare re-derives the key for password using the salt and iteration count
// stored in hash and compares in constant time. Returns nil on match,
// ErrPasswordMismatch otherwise, ErrInvalidHash for an unparseable hash.
func (h *Hasher) Compare(hash string, password []byte) error {
	parts := strings.Split(hash, "$")
	if len(parts) != 4 || parts[0] != hashPrefix {
		return ErrInvalidHash
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return ErrInvalidHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return ErrInvalidHash
	}
	stored, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return ErrInvalidHash
	}
	derived := pbkdf2.Key(password, salt, iterations, len(stored), sha256.New)
	if subtle.ConstantTimeCompare(derived, stored) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}
