package application

import "context"

// Mailer is the outbound email collaborator. Implementations may enqueue or
// send directly; either way a failure must never corrupt auth state. Whether
// a failure aborts the operation is decided per flow: registration propagates
// it, password reset swallows it.
type Mailer interface {
	SendVerification(ctx context.Context, email, rawToken string) error
	SendPasswordReset(ctx context.Context, email, rawToken string) error
}
