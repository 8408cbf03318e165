package repository

import (
	"context"
	"time"

	"github.com/satriadika/go-auth-service/internal/domain/entity"
)

// RefreshTokenRepository persists refresh token rows. Rows are revoked, never
// deleted.
type RefreshTokenRepository interface {
	Create(ctx context.Context, t *entity.RefreshToken) error
	GetByDigest(ctx context.Context, digest string) (*entity.RefreshToken, error)

	// Revoke flips the revoked flag only if the row is still unrevoked.
	// The boolean reports whether this call performed the flip; under
	// concurrent rotation exactly one caller sees true.
	Revoke(ctx context.Context, id string) (bool, error)

	// RevokeAllForUser revokes every unrevoked token of the user and
	// returns the number of rows affected.
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)

	TouchLastSeen(ctx context.Context, id string, at time.Time) error
}
