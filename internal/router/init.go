package router

import (
	"github.com/satriadika/go-auth-service/internal/application"
	"github.com/satriadika/go-auth-service/internal/container"
	pginfra "github.com/satriadika/go-auth-service/internal/infrastructure/postgres"
	handlers "github.com/satriadika/go-auth-service/internal/interface/http"
	"github.com/satriadika/go-auth-service/internal/router/modules"
	"github.com/satriadika/go-auth-service/pkg/mailer"
)

func buildAuthModule() *modules.AuthModule {
	cfg := container.GetConfig()
	pool := container.GetPGPool()
	logger := container.GetLogger()
	rec := container.GetAudit()

	users := pginfra.NewUserRepository(pool)
	preRegs := pginfra.NewPreRegistrationRepository(pool)
	tokens := pginfra.NewRefreshTokenRepository(pool)
	resets := pginfra.NewPasswordResetTokenRepository(pool)

	mail := &mailer.QueueMailer{
		Pub:              container.GetRabbitPub(),
		Company:          cfg.CompanyName,
		VerifyEmailURL:   cfg.VerifyEmailURL,
		ResetPasswordURL: cfg.ResetPasswordURL,
		VerificationTTL:  cfg.VerificationTTL.String(),
		ResetTTL:         cfg.ResetTTL.String(),
	}

	registration := application.NewRegistrationService(users, preRegs, mail, rec, logger, cfg.VerificationTTL, cfg.BcryptCost)
	sessions := application.NewSessionService(users, tokens, container.GetJWT(), rec, logger, cfg.RefreshTTL, cfg.RefreshCooldown)
	pwResets := application.NewPasswordResetService(users, resets, sessions, mail, rec, logger, cfg.ResetTTL, cfg.BcryptCost)

	handler := handlers.NewAuthHandler(registration, sessions, pwResets, logger, cfg.CookieDomain, cfg.CookieSecure)
	return modules.NewAuthModule(handler, container.GetJWT())
}

// InitModules initializes all application modules and registers them with
// the router registry. Called once during startup.
func InitModules(r *Registry) {
	r.Add(buildAuthModule())
}
