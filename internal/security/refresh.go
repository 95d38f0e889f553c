package security

import (
	"crypto/rand"
	"encoding/hex"
)

// NewRefreshTokenValue returns a cryptographically random opaque token string
// (32 bytes, hex-encoded) used as the stored refresh-token value.
func NewRefreshTokenValue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
