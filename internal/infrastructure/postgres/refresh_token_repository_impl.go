package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/satriadika/go-auth-service/internal/domain/entity"
	"github.com/satriadika/go-auth-service/internal/domain/repository"
)

type RefreshTokenRepository struct {
	pool *pgxpool.Pool
}

func NewRefreshTokenRepository(pool *pgxpool.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, t *entity.RefreshToken) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO refresh_tokens (user_id, token_digest, parent_id, device_id, device_label, ip, user_agent, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, t.UserID, t.TokenDigest, t.ParentID, t.DeviceID, t.DeviceLabel, t.IP, t.UserAgent, t.ExpiresAt)

	return row.Scan(&t.ID, &t.CreatedAt)
}

func (r *RefreshTokenRepository) GetByDigest(ctx context.Context, digest string) (*entity.RefreshToken, error) {
	t := &entity.RefreshToken{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, token_digest, parent_id, device_id, device_label, ip, user_agent,
		       created_at, last_seen_at, expires_at, revoked
		FROM refresh_tokens
		WHERE token_digest = $1
	`, digest)

	if err := row.Scan(&t.ID, &t.UserID, &t.TokenDigest, &t.ParentID, &t.DeviceID, &t.DeviceLabel,
		&t.IP, &t.UserAgent, &t.CreatedAt, &t.LastSeenAt, &t.ExpiresAt, &t.Revoked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Revoke is the atomic check-and-set behind single-use rotation: the update
// only matches while the row is still unrevoked, so exactly one concurrent
// caller gets rows-affected = 1.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, id string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked = true
		WHERE id = $1 AND revoked = false
	`, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked = true
		WHERE user_id = $1 AND revoked = false
	`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *RefreshTokenRepository) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens
		SET last_seen_at = $2
		WHERE id = $1
	`, id, at)
	return err
}

var _ repository.RefreshTokenRepository = (*RefreshTokenRepository)(nil)
