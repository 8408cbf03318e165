package helpers

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is deliberately above the library default; login is rare
// enough that the extra latency is acceptable.
const DefaultBcryptCost = 12

// HashPassword hashes the plain text password using bcrypt.
func HashPassword(plain string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password.
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
