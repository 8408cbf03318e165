package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderVerifyEmail(t *testing.T) {
	subject, text, html, err := Render(TemplateVerifyEmail, map[string]any{
		"Name":      "Alice",
		"Company":   "Acme",
		"Link":      "https://app.example.com/verify-email?token=abc",
		"ExpiresIn": "1h",
	})
	require.NoError(t, err)
	assert.Equal(t, "Verify your email address", subject)
	assert.Contains(t, text, "https://app.example.com/verify-email?token=abc")
	assert.Contains(t, html, "Alice")
	assert.Contains(t, html, `href="https://app.example.com/verify-email?token=abc"`)
	assert.Contains(t, html, "1h")
}

func TestRenderResetPassword(t *testing.T) {
	subject, _, html, err := Render(TemplateResetPassword, map[string]any{
		"Company":   "Acme",
		"Link":      "https://app.example.com/reset-password?token=xyz",
		"ExpiresIn": "15m",
	})
	require.NoError(t, err)
	assert.Equal(t, "Reset your password", subject)
	assert.Contains(t, html, `href="https://app.example.com/reset-password?token=xyz"`)
}

func TestRenderEscapesTemplateData(t *testing.T) {
	_, _, html, err := Render(TemplateVerifyEmail, map[string]any{
		"Name":      `<script>alert(1)</script>`,
		"Company":   "Acme",
		"Link":      "https://app.example.com/verify-email?token=abc",
		"ExpiresIn": "1h",
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", nil)
	assert.Error(t, err)
}
