package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// Template names carried in EmailJob.Template.
const (
	TemplateVerifyEmail   = "verify_email"
	TemplateResetPassword = "reset_password"
)

var verifyEmailHTML = template.Must(template.New(TemplateVerifyEmail).Parse(`
<p>Hi{{if .Name}} {{.Name}}{{end}},</p>
<p>Confirm your email address to finish creating your {{.Company}} account:</p>
<p><a href="{{.Link}}">Verify email</a></p>
<p>The link expires in {{.ExpiresIn}}. If you did not sign up, you can ignore this message.</p>
`))

var resetPasswordHTML = template.Must(template.New(TemplateResetPassword).Parse(`
<p>Hi,</p>
<p>We received a request to reset the password for your {{.Company}} account:</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>The link expires in {{.ExpiresIn}}. If you did not request this, your password is unchanged.</p>
`))

// Render produces subject, text, and html bodies for a known template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	var tpl *template.Template
	switch name {
	case TemplateVerifyEmail:
		subject = "Verify your email address"
		tpl = verifyEmailHTML
	case TemplateResetPassword:
		subject = "Reset your password"
		tpl = resetPasswordHTML
	default:
		return "", "", "", fmt.Errorf("unknown mail template %q", name)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", "", "", err
	}
	link, _ := data["Link"].(string)
	text = subject + ": " + link
	return subject, text, buf.String(), nil
}
