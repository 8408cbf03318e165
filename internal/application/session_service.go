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

// SessionService validates credentials, mints token pairs, and owns the
// refresh rotation engine. It is the only place access tokens are signed.
type SessionService struct {
	Users           repository.UserRepository
	Tokens          repository.RefreshTokenRepository
	JWT             *helpers.JWTManager
	Audit           audit.Recorder
	Logger          *logrus.Logger
	RefreshTTL      time.Duration
	RefreshCooldown time.Duration
}

func NewSessionService(users repository.UserRepository, tokens repository.RefreshTokenRepository, jwt *helpers.JWTManager, rec audit.Recorder, logger *logrus.Logger, refreshTTL, refreshCooldown time.Duration) *SessionService {
	return &SessionService{
		Users:           users,
		Tokens:          tokens,
		JWT:             jwt,
		Audit:           rec,
		Logger:          logger,
		RefreshTTL:      refreshTTL,
		RefreshCooldown: refreshCooldown,
	}
}

// TokenPair is what a successful login or rotation returns. RefreshToken is
// the raw secret; it is handed to the caller exactly once and only its
// digest is stored.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	ExpiresIn        int64 // access token lifetime in seconds
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type LoginInput struct {
	Email       string
	Password    string
	DeviceID    string
	DeviceLabel string
	IP          string
	UserAgent   string
}

// Login checks credentials and issues a fresh token pair bound to the
// device. Unknown account, unverified account, and wrong password are
// indistinguishable to the caller.
func (s *SessionService) Login(ctx context.Context, in LoginInput) (*entity.User, TokenPair, error) {
	email := NormalizeEmail(in.Email)

	fail := func() (*entity.User, TokenPair, error) {
		s.Audit.Enqueue(audit.Event{
			Action:    "login_failed",
			Email:     email,
			IP:        in.IP,
			UserAgent: in.UserAgent,
		})
		return nil, TokenPair{}, ErrUnauthorized
	}

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail()
		}
		s.Logger.WithError(err).Error("login: user lookup failed")
		return nil, TokenPair{}, ErrInternal
	}
	if !u.CanLogin() || u.PasswordHash == "" {
		return fail()
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, in.Password) {
		return fail()
	}

	pair, err := s.issue(ctx, u, nil, in.DeviceID, in.DeviceLabel, in.IP, in.UserAgent)
	if err != nil {
		return nil, TokenPair{}, err
	}

	s.Audit.Enqueue(audit.Event{
		Action:    "login_success",
		UserID:    u.ID,
		Email:     u.Email,
		IP:        in.IP,
		UserAgent: in.UserAgent,
		Metadata:  map[string]any{"device_id": in.DeviceID},
	})
	return u, pair, nil
}

// issue mints an access token and persists a new refresh token row. Shared
// by login and rotation so both bind the pair the same way.
func (s *SessionService) issue(ctx context.Context, u *entity.User, parentID *string, deviceID, deviceLabel, ip, userAgent string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, u.Role, deviceID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("access token signing failed")
		return TokenPair{}, ErrInternal
	}

	raw, err := helpers.GenerateToken(helpers.RefreshTokenBytes)
	if err != nil {
		s.Logger.WithError(err).Error("refresh token generation failed")
		return TokenPair{}, ErrInternal
	}

	rexp := time.Now().Add(s.RefreshTTL)
	row := &entity.RefreshToken{
		UserID:      u.ID,
		TokenDigest: helpers.Digest(raw),
		ParentID:    parentID,
		DeviceID:    deviceID,
		DeviceLabel: deviceLabel,
		IP:          ip,
		UserAgent:   userAgent,
		ExpiresAt:   rexp,
	}
	if err := s.Tokens.Create(ctx, row); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("refresh token persist failed")
		return TokenPair{}, ErrInternal
	}

	return TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  aexp,
		ExpiresIn:        int64(time.Until(aexp).Seconds()),
		RefreshToken:     raw,
		RefreshExpiresAt: rexp,
	}, nil
}

type RefreshInput struct {
	RawToken  string
	DeviceID  string
	IP        string
	UserAgent string
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is minted for the same device. The conditional revoke guarantees that
// two concurrent rotations of the same token produce exactly one winner.
func (s *SessionService) Refresh(ctx context.Context, in RefreshInput) (TokenPair, error) {
	now := time.Now()

	t, err := s.Tokens.GetByDigest(ctx, helpers.Digest(in.RawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		s.Logger.WithError(err).Error("refresh: token lookup failed")
		return TokenPair{}, ErrInternal
	}
	if t.DeviceID != in.DeviceID || !t.Usable(now) {
		return TokenPair{}, ErrUnauthorized
	}
	// The token itself was minted by a rotation moments ago; a legitimate
	// client double-submitting gets throttled instead of burning the pair.
	// Tokens issued directly by login are exempt.
	if t.ParentID != nil && now.Sub(t.CreatedAt) < s.RefreshCooldown {
		return TokenPair{}, ErrTooSoon
	}

	u, err := s.Users.GetByID(ctx, t.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		s.Logger.WithError(err).Error("refresh: user lookup failed")
		return TokenPair{}, ErrInternal
	}
	if !u.CanLogin() {
		return TokenPair{}, ErrUnauthorized
	}

	// Single-use guard: only the caller that flips revoked may mint.
	won, err := s.Tokens.Revoke(ctx, t.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("token_id", t.ID).Error("refresh: revoke failed")
		return TokenPair{}, ErrInternal
	}
	if !won {
		s.Audit.Enqueue(audit.Event{
			Action:    "refresh_replayed",
			UserID:    t.UserID,
			IP:        in.IP,
			UserAgent: in.UserAgent,
			Metadata:  map[string]any{"token_id": t.ID},
		})
		return TokenPair{}, ErrUnauthorized
	}
	if err := s.Tokens.TouchLastSeen(ctx, t.ID, now); err != nil {
		s.Logger.WithError(err).WithField("token_id", t.ID).Warn("refresh: last-seen update failed")
	}

	pair, err := s.issue(ctx, u, &t.ID, t.DeviceID, t.DeviceLabel, in.IP, in.UserAgent)
	if err != nil {
		return TokenPair{}, err
	}

	s.Audit.Enqueue(audit.Event{
		Action:    "refresh",
		UserID:    u.ID,
		IP:        in.IP,
		UserAgent: in.UserAgent,
		Metadata:  map[string]any{"device_id": t.DeviceID},
	})
	return pair, nil
}

// Logout revokes the presented refresh token. A second call with the same
// token reports ErrNotFound; the session is gone either way.
func (s *SessionService) Logout(ctx context.Context, rawToken, ip, userAgent string) error {
	t, err := s.Tokens.GetByDigest(ctx, helpers.Digest(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		s.Logger.WithError(err).Error("logout: token lookup failed")
		return ErrInternal
	}

	won, err := s.Tokens.Revoke(ctx, t.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("token_id", t.ID).Error("logout: revoke failed")
		return ErrInternal
	}
	if !won {
		return ErrNotFound
	}

	s.Audit.Enqueue(audit.Event{
		Action:    "logout",
		UserID:    t.UserID,
		IP:        ip,
		UserAgent: userAgent,
		Metadata:  map[string]any{"device_id": t.DeviceID},
	})
	return nil
}

// LogoutAll revokes every refresh token of the user, across all devices.
// Succeeds even when nothing was revoked.
func (s *SessionService) LogoutAll(ctx context.Context, userID, ip, userAgent string) error {
	n, err := s.Tokens.RevokeAllForUser(ctx, userID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Error("logout all: revoke failed")
		return ErrInternal
	}

	s.Audit.Enqueue(audit.Event{
		Action:    "logout_all",
		UserID:    userID,
		IP:        ip,
		UserAgent: userAgent,
		Metadata:  map[string]any{"revoked": n},
	})
	return nil
}
