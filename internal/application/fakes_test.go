package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/satriadika/go-auth-service/internal/audit"
	"github.com/satriadika/go-auth-service/internal/domain/entity"
	"github.com/satriadika/go-auth-service/internal/domain/repository"
	"github.com/satriadika/go-auth-service/pkg/helpers"
)

func newTestJWT() *helpers.JWTManager {
	return helpers.NewJWTManager("test-secret", 15*time.Minute)
}

// In-memory fakes mirroring the conditional-update semantics of the postgres
// repositories. All are safe for concurrent use so rotation races can be
// exercised for real.

type memUsers struct {
	mu   sync.Mutex
	rows map[string]*entity.User // by id
}

func newMemUsers() *memUsers {
	return &memUsers{rows: map[string]*entity.User{}}
}

func (m *memUsers) Create(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.rows[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[id]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Email == email {
			cp := *row
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.DeletedAt != nil {
		return repository.ErrNotFound
	}
	row.PasswordHash = passwordHash
	row.UpdatedAt = time.Now()
	return nil
}

// put inserts a row directly, bypassing Create's uniqueness check setup.
func (m *memUsers) put(u *entity.User) *entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	m.rows[u.ID] = &cp
	return u
}

type memPreRegs struct {
	mu    sync.Mutex
	rows  map[string]*entity.PreRegistration // by email
	users *memUsers
}

func newMemPreRegs(users *memUsers) *memPreRegs {
	return &memPreRegs{rows: map[string]*entity.PreRegistration{}, users: users}
}

func (m *memPreRegs) Upsert(ctx context.Context, p *entity.PreRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.rows[p.Email]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = time.Now()
	}
	cp := *p
	m.rows[p.Email] = &cp
	return nil
}

func (m *memPreRegs) GetByTokenDigest(ctx context.Context, digest string) (*entity.PreRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TokenDigest == digest {
			cp := *row
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPreRegs) Promote(ctx context.Context, p *entity.PreRegistration, role string) (*entity.User, error) {
	m.mu.Lock()
	existing, ok := m.rows[p.Email]
	if !ok || existing.TokenDigest != p.TokenDigest {
		m.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	delete(m.rows, p.Email)
	m.mu.Unlock()

	u := &entity.User{
		Email:           p.Email,
		PasswordHash:    p.PasswordHash,
		Name:            p.Name,
		Role:            role,
		IsEmailVerified: true,
	}
	if err := m.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (m *memPreRegs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memTokens struct {
	mu   sync.Mutex
	rows map[string]*entity.RefreshToken // by id
}

func newMemTokens() *memTokens {
	return &memTokens{rows: map[string]*entity.RefreshToken{}}
}

func (m *memTokens) Create(ctx context.Context, t *entity.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	cp := *t
	m.rows[t.ID] = &cp
	return nil
}

func (m *memTokens) GetByDigest(ctx context.Context, digest string) (*entity.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TokenDigest == digest {
			cp := *row
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memTokens) Revoke(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.Revoked {
		return false, nil
	}
	row.Revoked = true
	return true, nil
}

func (m *memTokens) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.rows {
		if row.UserID == userID && !row.Revoked {
			row.Revoked = true
			n++
		}
	}
	return n, nil
}

func (m *memTokens) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[id]; ok {
		row.LastSeenAt = &at
	}
	return nil
}

// backdate shifts a token's creation time, to step past the cooldown window.
func (m *memTokens) backdate(digest string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TokenDigest == digest {
			row.CreatedAt = row.CreatedAt.Add(-d)
		}
	}
}

func (m *memTokens) unrevokedCount(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, row := range m.rows {
		if row.UserID == userID && !row.Revoked {
			n++
		}
	}
	return n
}

type memResets struct {
	mu   sync.Mutex
	rows map[string]*entity.PasswordResetToken // by id
}

func newMemResets() *memResets {
	return &memResets{rows: map[string]*entity.PasswordResetToken{}}
}

func (m *memResets) Create(ctx context.Context, t *entity.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	m.rows[t.ID] = &cp
	return nil
}

func (m *memResets) GetByDigest(ctx context.Context, digest string) (*entity.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TokenDigest == digest {
			cp := *row
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memResets) Consume(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.Used {
		return false, nil
	}
	row.Used = true
	row.UpdatedAt = time.Now()
	return true, nil
}

func (m *memResets) InvalidateAllForUser(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.rows {
		if row.UserID == userID && !row.Used {
			row.Used = true
			n++
		}
	}
	return n, nil
}

// expire moves a token's deadline into the past.
func (m *memResets) expire(digest string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TokenDigest == digest {
			row.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}
}

func (m *memResets) usedCount(userID string) (used, unused int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.UserID != userID {
			continue
		}
		if row.Used {
			used++
		} else {
			unused++
		}
	}
	return used, unused
}

type sentMail struct {
	Email    string
	RawToken string
}

type fakeMailer struct {
	mu            sync.Mutex
	verifications []sentMail
	resets        []sentMail
	failVerify    error
	failReset     error
}

func (m *fakeMailer) SendVerification(ctx context.Context, email, rawToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failVerify != nil {
		return m.failVerify
	}
	m.verifications = append(m.verifications, sentMail{Email: email, RawToken: rawToken})
	return nil
}

func (m *fakeMailer) SendPasswordReset(ctx context.Context, email, rawToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReset != nil {
		return m.failReset
	}
	m.resets = append(m.resets, sentMail{Email: email, RawToken: rawToken})
	return nil
}

func (m *fakeMailer) lastVerification() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.verifications) == 0 {
		return sentMail{}, false
	}
	return m.verifications[len(m.verifications)-1], true
}

func (m *fakeMailer) lastReset() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.resets) == 0 {
		return sentMail{}, false
	}
	return m.resets[len(m.resets)-1], true
}

type capturedAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (c *capturedAudit) Enqueue(ev audit.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *capturedAudit) actions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Action
	}
	return out
}

var errBroken = errors.New("collaborator down")

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// env bundles fully wired services over the in-memory fakes.
type env struct {
	users    *memUsers
	preRegs  *memPreRegs
	tokens   *memTokens
	resets   *memResets
	mailer   *fakeMailer
	audit    *capturedAudit
	reg      *RegistrationService
	sessions *SessionService
	pwReset  *PasswordResetService
}

func newEnv(refreshCooldown time.Duration) *env {
	users := newMemUsers()
	preRegs := newMemPreRegs(users)
	tokens := newMemTokens()
	resets := newMemResets()
	mail := &fakeMailer{}
	rec := &capturedAudit{}
	logger := testLogger()

	const bcryptCost = 4 // keep the tests fast

	jwt := newTestJWT()
	sessions := NewSessionService(users, tokens, jwt, rec, logger, 24*time.Hour, refreshCooldown)
	return &env{
		users:    users,
		preRegs:  preRegs,
		tokens:   tokens,
		resets:   resets,
		mailer:   mail,
		audit:    rec,
		reg:      NewRegistrationService(users, preRegs, mail, rec, logger, time.Hour, bcryptCost),
		sessions: sessions,
		pwReset:  NewPasswordResetService(users, resets, sessions, mail, rec, logger, 15*time.Minute, bcryptCost),
	}
}
