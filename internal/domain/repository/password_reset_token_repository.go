package repository

import (
	"context"

	"github.com/satriadika/go-auth-service/internal/domain/entity"
)

// PasswordResetTokenRepository persists self-service reset tokens.
type PasswordResetTokenRepository interface {
	Create(ctx context.Context, t *entity.PasswordResetToken) error
	GetByDigest(ctx context.Context, digest string) (*entity.PasswordResetToken, error)

	// Consume marks the token used only if it is still unused. The boolean
	// reports whether this call won; a concurrent redeem sees false.
	Consume(ctx context.Context, id string) (bool, error)

	// InvalidateAllForUser marks every unused token of the user as used,
	// enforcing the single-active-token policy.
	InvalidateAllForUser(ctx context.Context, userID string) (int64, error)
}
