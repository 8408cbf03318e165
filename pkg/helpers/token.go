package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

// Entropy sizes for opaque secrets. Refresh tokens get the larger size since
// possession alone authenticates the bearer.
const (
	VerificationTokenBytes = 32
	ResetTokenBytes        = 32
	RefreshTokenBytes      = 64
)

// GenerateToken returns a URL-safe random secret with n bytes of entropy.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Digest returns the hex-encoded SHA-256 of a raw token. Only digests are
// ever persisted; the raw secret exists in memory and in the outbound
// response or email, nowhere else.
func Digest(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// DigestEqual compares two digests in constant time.
func DigestEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
