package entity

import "time"

// PasswordResetToken is a short-lived, single-use reset secret. Issuing a new
// token marks all prior unused tokens for the same user as used.
type PasswordResetToken struct {
	ID          string
	UserID      string
	TokenDigest string
	ExpiresAt   time.Time
	Used        bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Redeemable reports whether the token can still be consumed.
func (t *PasswordResetToken) Redeemable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
