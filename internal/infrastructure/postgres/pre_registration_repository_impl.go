package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/satriadika/go-auth-service/internal/domain/entity"
	"github.com/satriadika/go-auth-service/internal/domain/repository"
)

type PreRegistrationRepository struct {
	pool *pgxpool.Pool
}

func NewPreRegistrationRepository(pool *pgxpool.Pool) *PreRegistrationRepository {
	return &PreRegistrationRepository{pool: pool}
}

// Upsert is keyed by email so a repeat registration overwrites the pending
// row instead of racing a delete+insert.
func (r *PreRegistrationRepository) Upsert(ctx context.Context, p *entity.PreRegistration) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO pre_registrations (email, password_hash, name, token_digest, expires_at, ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			name          = EXCLUDED.name,
			token_digest  = EXCLUDED.token_digest,
			expires_at    = EXCLUDED.expires_at,
			ip            = EXCLUDED.ip,
			user_agent    = EXCLUDED.user_agent
		RETURNING created_at
	`, p.Email, p.PasswordHash, p.Name, p.TokenDigest, p.ExpiresAt, p.IP, p.UserAgent)

	return row.Scan(&p.CreatedAt)
}

func (r *PreRegistrationRepository) GetByTokenDigest(ctx context.Context, digest string) (*entity.PreRegistration, error) {
	p := &entity.PreRegistration{}
	row := r.pool.QueryRow(ctx, `
		SELECT email, password_hash, name, token_digest, expires_at, ip, user_agent, created_at
		FROM pre_registrations
		WHERE token_digest = $1
	`, digest)

	if err := row.Scan(&p.Email, &p.PasswordHash, &p.Name, &p.TokenDigest,
		&p.ExpiresAt, &p.IP, &p.UserAgent, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Promote deletes the pending row and creates the verified user in one
// transaction. The delete is conditioned on the token digest, so only one of
// two concurrent verifications reaches the insert.
func (r *PreRegistrationRepository) Promote(ctx context.Context, p *entity.PreRegistration, role string) (*entity.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := tx.Exec(ctx, `
		DELETE FROM pre_registrations
		WHERE email = $1 AND token_digest = $2
	`, p.Email, p.TokenDigest)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}

	u := &entity.User{
		Email:           p.Email,
		PasswordHash:    p.PasswordHash,
		Name:            p.Name,
		Role:            role,
		IsEmailVerified: true,
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, role, is_email_verified)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, created_at, updated_at
	`, u.Email, u.PasswordHash, u.Name, u.Role)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, repository.ErrDuplicateEmail
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

var _ repository.PreRegistrationRepository = (*PreRegistrationRepository)(nil)
