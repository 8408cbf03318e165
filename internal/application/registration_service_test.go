package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriadika/go-auth-service/internal/domain/entity"
	"github.com/satriadika/go-auth-service/pkg/helpers"
)

func registerInput(email string) RegisterInput {
	return RegisterInput{
		Email:     email,
		Password:  "pw12345!",
		Name:      "A",
		IP:        "203.0.113.7",
		UserAgent: "test-agent",
	}
}

func TestRegisterCreatesPendingVerification(t *testing.T) {
	e := newEnv(0)
	ctx := context.Background()

	require.NoError(t, e.reg.Register(ctx, registerInput("a@x.com")))

	assert.Equal(t, 1, e.preRegs.count())

	mail, ok := e.mailer.lastVerification()
	require.True(t, ok, "verification mail should have been sent")
	assert.Equal(t, "a@x.com", mail.Email)

	// Only the digest of the mailed token is stored.
	pre, err := e.preRegs.GetByTokenDigest(ctx, helpers.Digest(mail.RawToken))
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", pre.Email)
	assert.NotEqual(t, mail.RawToken, pre.TokenDigest)
	assert.NotEqual(t, "pw12345!", pre.PasswordHash)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	e := newEnv(0)
	ctx := context.Background()

	require.NoError(t, e.reg.Register(ctx, registerInput("  Mixed.Case@X.COM ")))

	mail, ok := e.mailer.lastVerification()
	require.True(t, ok)
	assert.Equal(t, "mixed.case@x.com", mail.Email)
}

func TestRegisterRepeatOverwritesPending(t *testing.T) {
	e := newEnv(0)
	ctx := context.Background()

	require.NoError(t, e.reg.Register(ctx, registerInput("a@x.com")))
	first, _ := e.mailer.lastVerification()

	require.NoError(t, e.reg.Register(ctx, registerInput("a@x.com")))
	second, _ := e.mailer.lastVerification()

	assert.Equal(t, 1, e.preRegs.count(), "repeat registration must not duplicate the pending row")
	assert.NotEqual(t, first.RawToken, second.RawToken, "repeat registration reissues the token")

	// The first token no longer matches anything.
	_, err := e.reg.VerifyEmail(ctx, first.RawToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpired)
}

func TestRegisterConflictOnVerifiedEmail(t *testing.T) {
	e := newEnv(0)
	e.users.put(&entity.User{Email: "a@x.com", IsEmailVerified: true, Role: entity.RoleUser})

	err := e.reg.Register(context.Background(), registerInput("a@x.com"))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegisterMailFailureIsInternal(t *testing.T) {
	e := newEnv(0)
	e.mailer.failVerify = errBroken

	err := e.reg.Register(context.Background(), registerInput("a@x.com"))
	assert.ErrorIs(t, err, ErrInternal)

	// The pending row survives; the retry reissues a fresh token.
	assert.Equal(t, 1, e.preRegs.count())
	e.mailer.failVerify = nil
	assert.NoError(t, e.reg.Register(context.Background(), registerInput("a@x.com")))
}

func TestVerifyEmailCreatesUserExactlyOnce(t *testing.T) {
	e := newEnv(0)
	ctx := context.Background()

	require.NoError(t, e.reg.Register(ctx, registerInput("a@x.com")))
	mail, _ := e.mailer.lastVerification()

	u, err := e.reg.VerifyEmail(ctx, mail.RawToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.True(t, u.IsEmailVerified)
	assert.Equal(t, entity.RoleUser, u.Role)
	assert.Equal(t, 0, e.preRegs.count(), "pre-registration is deleted on verification")

	// The stored hash verifies against the original password.
	stored, err := e.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, helpers.CompareHashAndPassword(stored.PasswordHash, "pw12345!"))

	// Second redemption of the same token fails.
	_, err = e.reg.VerifyEmail(ctx, mail.RawToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpired)
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	e := newEnv(0)
	ctx := context.Background()

	require.NoError(t, e.reg.Register(ctx, registerInput("a@x.com")))
	mail, _ := e.mailer.lastVerification()

	// Push the expiry into the past.
	pre, err := e.preRegs.GetByTokenDigest(ctx, helpers.Digest(mail.RawToken))
	require.NoError(t, err)
	pre.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, e.preRegs.Upsert(ctx, pre))

	_, err = e.reg.VerifyEmail(ctx, mail.RawToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpired)
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	e := newEnv(0)
	_, err := e.reg.VerifyEmail(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrInvalidOrExpired)
}
