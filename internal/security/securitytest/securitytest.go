// Package securitytest provides token fixtures for tests in other packages.
// Not for production use: the signing secret is fixed and public.
package securitytest

import (
	"time"

	"octagram/backend/internal/security"
)

// NewTokenProvider returns a TokenProvider with a fixed secret and a short
// access TTL, suitable for minting tokens in handler tests.
func NewTokenProvider() *security.TokenProvider {
	return security.NewTokenProvider([]byte("test-secret-key-0123456789abcdef"), "test-issuer", 15*time.Minute)
}
