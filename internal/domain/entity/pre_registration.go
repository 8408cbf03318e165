package entity

import "time"

// PreRegistration is the transient holding record for an unverified sign-up.
// At most one live row exists per email; a repeat registration overwrites the
// token, expiry, and password hash instead of creating a duplicate.
type PreRegistration struct {
	Email        string
	PasswordHash string
	Name         string
	TokenDigest  string
	ExpiresAt    time.Time
	IP           string
	UserAgent    string
	CreatedAt    time.Time
}

// Expired reports whether the verification window has passed.
func (p *PreRegistration) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
