package entity

import (
	"time"
)

// User is the aggregate root for the identity domain.
// PasswordHash is empty for federated-only accounts.
type User struct {
	ID              string
	Email           string
	PasswordHash    string
	Name            string
	Role            string
	IsEmailVerified bool
	IsDisabled      bool
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanLogin reports whether the account is reachable by credential login.
func (u *User) CanLogin() bool {
	return u.IsEmailVerified && !u.IsDisabled && u.DeletedAt == nil
}
