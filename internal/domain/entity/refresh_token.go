package entity

import "time"

// RefreshToken is a persisted refresh token row. Only the digest of the raw
// secret is stored; rows are revoked rather than deleted so the history stays
// available for audit.
type RefreshToken struct {
	ID          string
	UserID      string
	TokenDigest string
	// ParentID links a rotation-minted token to the token it replaced.
	// Nil for tokens issued directly by login.
	ParentID    *string
	DeviceID    string
	DeviceLabel string
	IP          string
	UserAgent   string
	CreatedAt   time.Time
	LastSeenAt  *time.Time
	ExpiresAt   time.Time
	Revoked     bool
}

// Usable reports whether the token can still be exchanged for a new pair.
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
