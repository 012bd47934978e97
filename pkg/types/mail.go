package types

import "context"

// Mail template identifiers selected by the confirmation coordinator. The
// host mail layer maps them onto its own template files.
const (
	MailTemplateConfirmationSignup = "email/email_confirmation_signup"
	MailTemplateConfirmationChange = "email/change_email_confirmation"
	MailTemplateConfirmation       = "email/email_confirmation"
	MailTemplatePasswordReset      = "email/password_reset_key"
)

// MailMessage describes one templated email hand-off. The core never renders
// or transmits mail; it decides the template, recipient, and context.
type MailMessage struct {
	Template string
	To       string
	Subject  string
	Context  map[string]any
}

// MailScheduler is implemented by the host's asynchronous task runner.
// Schedule enqueues delivery and returns once the hand-off is accepted;
// actual transmission happens out of band.
type MailScheduler interface {
	Schedule(ctx context.Context, msg MailMessage) error
}
