package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// The worker renders Template with Data; Subject/Text/HTML override the
// rendered output when set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "verify_email" or "reset_password"
	Data     map[string]any `json:"data,omitempty"`
}
