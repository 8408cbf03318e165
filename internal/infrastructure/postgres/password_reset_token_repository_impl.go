package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/satriadika/go-auth-service/internal/domain/entity"
	"github.com/satriadika/go-auth-service/internal/domain/repository"
)

type PasswordResetTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPasswordResetTokenRepository(pool *pgxpool.Pool) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{pool: pool}
}

func (r *PasswordResetTokenRepository) Create(ctx context.Context, t *entity.PasswordResetToken) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO password_reset_tokens (user_id, token_digest, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, t.UserID, t.TokenDigest, t.ExpiresAt)

	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *PasswordResetTokenRepository) GetByDigest(ctx context.Context, digest string) (*entity.PasswordResetToken, error) {
	t := &entity.PasswordResetToken{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, token_digest, expires_at, used, created_at, updated_at
		FROM password_reset_tokens
		WHERE token_digest = $1
	`, digest)

	if err := row.Scan(&t.ID, &t.UserID, &t.TokenDigest, &t.ExpiresAt,
		&t.Used, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Consume only matches while the token is unused, so a token redeemed by two
// concurrent requests is consumed exactly once.
func (r *PasswordResetTokenRepository) Consume(ctx context.Context, id string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE password_reset_tokens
		SET used = true, updated_at = now()
		WHERE id = $1 AND used = false
	`, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *PasswordResetTokenRepository) InvalidateAllForUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE password_reset_tokens
		SET used = true, updated_at = now()
		WHERE user_id = $1 AND used = false
	`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var _ repository.PasswordResetTokenRepository = (*PasswordResetTokenRepository)(nil)
