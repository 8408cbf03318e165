package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/satriadika/go-auth-service/internal/audit"
	"github.com/satriadika/go-auth-service/internal/domain/entity"
	"github.com/satriadika/go-auth-service/internal/domain/repository"
	"github.com/satriadika/go-auth-service/pkg/helpers"
)

// RegistrationService drives the sign-up state machine:
// no record -> pending verification -> verified user.
type RegistrationService struct {
	Users           repository.UserRepository
	PreRegs         repository.PreRegistrationRepository
	Mailer          Mailer
	Audit           audit.Recorder
	Logger          *logrus.Logger
	VerificationTTL time.Duration
	BcryptCost      int
}

func NewRegistrationService(users repository.UserRepository, preRegs repository.PreRegistrationRepository, mailer Mailer, rec audit.Recorder, logger *logrus.Logger, verificationTTL time.Duration, bcryptCost int) *RegistrationService {
	return &RegistrationService{
		Users:           users,
		PreRegs:         preRegs,
		Mailer:          mailer,
		Audit:           rec,
		Logger:          logger,
		VerificationTTL: verificationTTL,
		BcryptCost:      bcryptCost,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	IP        string
	UserAgent string
}

// NormalizeEmail lower-cases and trims an address so uniqueness checks are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates or refreshes the pending sign-up for the email and sends
// a fresh verification link. Repeating the call overwrites the previous
// token and expiry; the operation is idempotent from the caller's side.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) error {
	email := NormalizeEmail(in.Email)

	existing, err := s.Users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.Logger.WithError(err).Error("register: user lookup failed")
		return ErrInternal
	}
	if existing != nil && existing.IsEmailVerified && existing.DeletedAt == nil {
		return ErrConflict
	}

	hash, err := helpers.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		s.Logger.WithError(err).Error("register: password hashing failed")
		return ErrInternal
	}
	raw, err := helpers.GenerateToken(helpers.VerificationTokenBytes)
	if err != nil {
		s.Logger.WithError(err).Error("register: token generation failed")
		return ErrInternal
	}

	pre := &entity.PreRegistration{
		Email:        email,
		PasswordHash: hash,
		Name:         in.Name,
		TokenDigest:  helpers.Digest(raw),
		ExpiresAt:    time.Now().Add(s.VerificationTTL),
		IP:           in.IP,
		UserAgent:    in.UserAgent,
	}
	if err := s.PreRegs.Upsert(ctx, pre); err != nil {
		s.Logger.WithError(err).Error("register: pre-registration upsert failed")
		return ErrInternal
	}

	// Mail failure aborts the whole operation; the caller retries and the
	// upsert above reissues a fresh token.
	if err := s.Mailer.SendVerification(ctx, email, raw); err != nil {
		s.Logger.WithError(err).WithField("email", email).Error("register: verification mail dispatch failed")
		return ErrInternal
	}

	s.Audit.Enqueue(audit.Event{
		Action:    "register",
		Email:     email,
		IP:        in.IP,
		UserAgent: in.UserAgent,
	})
	return nil
}

// VerifyEmail exchanges a verification token for a real user account. The
// exchange succeeds exactly once; the pre-registration is deleted in the
// same transaction that creates the user.
func (s *RegistrationService) VerifyEmail(ctx context.Context, rawToken string) (*entity.User, error) {
	pre, err := s.PreRegs.GetByTokenDigest(ctx, helpers.Digest(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidOrExpired
		}
		s.Logger.WithError(err).Error("verify email: lookup failed")
		return nil, ErrInternal
	}
	if pre.Expired(time.Now()) {
		return nil, ErrInvalidOrExpired
	}

	u, err := s.PreRegs.Promote(ctx, pre, entity.RoleUser)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// A concurrent call consumed the token first.
			return nil, ErrInvalidOrExpired
		}
		s.Logger.WithError(err).WithField("email", pre.Email).Error("verify email: promote failed")
		return nil, ErrInternal
	}

	s.Audit.Enqueue(audit.Event{
		Action: "email_verified",
		UserID: u.ID,
		Email:  u.Email,
	})
	return u, nil
}
