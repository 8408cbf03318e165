package application

import "errors"

// Error taxonomy surfaced to the HTTP layer. Handlers map these to status
// codes; anything else is treated as internal and only logged.
var (
	// ErrConflict: a verified account already owns the email.
	ErrConflict = errors.New("account already exists")

	// ErrInvalidOrExpired: bad or expired verification/reset token.
	ErrInvalidOrExpired = errors.New("invalid or expired token")

	// ErrUnauthorized: bad credentials, or a revoked/expired/replayed
	// refresh token. Deliberately generic so callers cannot distinguish
	// unknown accounts from wrong passwords.
	ErrUnauthorized = errors.New("invalid credentials")

	// ErrNotFound: logout with an unknown refresh token.
	ErrNotFound = errors.New("token not found")

	// ErrTooSoon: rotation attempted inside the cooldown window. A
	// throttling rejection, not a security failure.
	ErrTooSoon = errors.New("token was rotated too recently")

	// ErrInternal: store or mail failure on the critical path.
	ErrInternal = errors.New("internal error")
)
