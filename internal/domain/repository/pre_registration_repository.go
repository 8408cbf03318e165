package repository

import (
	"context"

	"github.com/satriadika/go-auth-service/internal/domain/entity"
)

// PreRegistrationRepository manages the transient sign-up holding records.
type PreRegistrationRepository interface {
	// Upsert creates the row for the email or overwrites the existing one
	// (token digest, expiry, password hash). Keyed by email so two
	// concurrent registrations for the same address never duplicate.
	Upsert(ctx context.Context, p *entity.PreRegistration) error

	GetByTokenDigest(ctx context.Context, digest string) (*entity.PreRegistration, error)

	// Promote atomically creates the verified user and deletes the
	// pre-registration in one transaction. Returns ErrNotFound if the row
	// was already consumed by a concurrent call.
	Promote(ctx context.Context, p *entity.PreRegistration, role string) (*entity.User, error)
}
