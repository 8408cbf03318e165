package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/satriadika/go-auth-service/internal/audit"
	"github.com/satriadika/go-auth-service/internal/domain/entity"
	"github.com/satriadika/go-auth-service/internal/domain/repository"
	"github.com/satriadika/go-auth-service/pkg/helpers"
)

// PasswordResetService implements the request/verify/consume reset flow.
// The request leg never reveals whether an account exists.
type PasswordResetService struct {
	Users      repository.UserRepository
	Resets     repository.PasswordResetTokenRepository
	Sessions   *SessionService
	Mailer     Mailer
	Audit      audit.Recorder
	Logger     *logrus.Logger
	ResetTTL   time.Duration
	BcryptCost int
}

func NewPasswordResetService(users repository.UserRepository, resets repository.PasswordResetTokenRepository, sessions *SessionService, mailer Mailer, rec audit.Recorder, logger *logrus.Logger, resetTTL time.Duration, bcryptCost int) *PasswordResetService {
	return &PasswordResetService{
		Users:      users,
		Resets:     resets,
		Sessions:   sessions,
		Mailer:     mailer,
		Audit:      rec,
		Logger:     logger,
		ResetTTL:   resetTTL,
		BcryptCost: bcryptCost,
	}
}

// RequestReset issues a reset token for the account if one exists. It never
// returns an error: lookup, store, and mail failures are logged and
// swallowed so the caller-visible response is identical in every case.
func (s *PasswordResetService) RequestReset(ctx context.Context, email, ip, userAgent string) {
	email = NormalizeEmail(email)

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.Logger.WithError(err).Error("reset request: user lookup failed")
		}
		s.Audit.Enqueue(audit.Event{
			Action:    "password_reset_requested_unknown",
			Email:     email,
			IP:        ip,
			UserAgent: userAgent,
		})
		return
	}
	if !u.CanLogin() {
		s.Audit.Enqueue(audit.Event{
			Action:    "password_reset_requested_unknown",
			Email:     email,
			IP:        ip,
			UserAgent: userAgent,
		})
		return
	}

	// Single-active-token policy: every prior unused token dies here.
	if _, err := s.Resets.InvalidateAllForUser(ctx, u.ID); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("reset request: invalidate failed")
		return
	}

	raw, err := helpers.GenerateToken(helpers.ResetTokenBytes)
	if err != nil {
		s.Logger.WithError(err).Error("reset request: token generation failed")
		return
	}
	row := &entity.PasswordResetToken{
		UserID:      u.ID,
		TokenDigest: helpers.Digest(raw),
		ExpiresAt:   time.Now().Add(s.ResetTTL),
	}
	if err := s.Resets.Create(ctx, row); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("reset request: token persist failed")
		return
	}

	if err := s.Mailer.SendPasswordReset(ctx, u.Email, raw); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("reset request: mail dispatch failed")
		s.Audit.Enqueue(audit.Event{
			Action:    "password_reset_mail_failed",
			UserID:    u.ID,
			Email:     u.Email,
			IP:        ip,
			UserAgent: userAgent,
		})
		return
	}

	s.Audit.Enqueue(audit.Event{
		Action:    "password_reset_requested",
		UserID:    u.ID,
		Email:     u.Email,
		IP:        ip,
		UserAgent: userAgent,
	})
}

// lookup validates a presented reset token and returns it with its owner.
func (s *PasswordResetService) lookup(ctx context.Context, rawToken string) (*entity.PasswordResetToken, *entity.User, error) {
	t, err := s.Resets.GetByDigest(ctx, helpers.Digest(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUnauthorized
		}
		s.Logger.WithError(err).Error("reset: token lookup failed")
		return nil, nil, ErrInternal
	}
	if !t.Redeemable(time.Now()) {
		return nil, nil, ErrUnauthorized
	}
	u, err := s.Users.GetByID(ctx, t.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUnauthorized
		}
		s.Logger.WithError(err).Error("reset: user lookup failed")
		return nil, nil, ErrInternal
	}
	return t, u, nil
}

// VerifyResetToken confirms a token is redeemable and returns the masked
// target address, nothing else.
func (s *PasswordResetService) VerifyResetToken(ctx context.Context, rawToken string) (string, error) {
	_, u, err := s.lookup(ctx, rawToken)
	if err != nil {
		return "", err
	}
	return helpers.MaskEmail(u.Email), nil
}

// ResetPassword consumes the token, stores the new password hash, and forces
// re-authentication everywhere. The conditional consume is the replay guard;
// if consuming errors out for any other reason the password change still
// proceeds, since it is the higher-priority guarantee.
func (s *PasswordResetService) ResetPassword(ctx context.Context, rawToken, newPassword, ip, userAgent string) error {
	t, u, err := s.lookup(ctx, rawToken)
	if err != nil {
		return err
	}

	won, err := s.Resets.Consume(ctx, t.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("token_id", t.ID).Error("reset: consume failed, continuing with password change")
	} else if !won {
		// Lost a concurrent redeem of the same token.
		return ErrUnauthorized
	}

	hash, err := helpers.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		s.Logger.WithError(err).Error("reset: password hashing failed")
		return ErrInternal
	}
	if err := s.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("reset: password update failed")
		return ErrInternal
	}

	// Every device re-authenticates after a reset.
	if err := s.Sessions.LogoutAll(ctx, u.ID, ip, userAgent); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("reset: logout all failed")
	}

	s.Audit.Enqueue(audit.Event{
		Action:    "password_reset_completed",
		UserID:    u.ID,
		Email:     u.Email,
		IP:        ip,
		UserAgent: userAgent,
	})
	return nil
}
