package mailer

import (
	"context"

	"github.com/satriadika/go-auth-service/pkg/helpers"
)

// QueueMailer publishes email jobs to RabbitMQ; the email_worker binary
// picks them up and delivers via Mailgun. A publish failure is returned to
// the caller, who decides whether it is fatal for the operation.
type QueueMailer struct {
	Pub              *helpers.RabbitPublisher
	Company          string
	VerifyEmailURL   string
	ResetPasswordURL string
	VerificationTTL  string
	ResetTTL         string
}

func (m *QueueMailer) SendVerification(ctx context.Context, email, rawToken string) error {
	return m.Pub.PublishJSON(ctx, EmailJob{
		To:       email,
		Template: TemplateVerifyEmail,
		Data: map[string]any{
			"Company":   m.Company,
			"Link":      m.VerifyEmailURL + "?token=" + rawToken,
			"ExpiresIn": m.VerificationTTL,
		},
	})
}

func (m *QueueMailer) SendPasswordReset(ctx context.Context, email, rawToken string) error {
	return m.Pub.PublishJSON(ctx, EmailJob{
		To:       email,
		Template: TemplateResetPassword,
		Data: map[string]any{
			"Company":   m.Company,
			"Link":      m.ResetPasswordURL + "?token=" + rawToken,
			"ExpiresIn": m.ResetTTL,
		},
	})
}
