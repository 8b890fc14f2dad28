// Package mailer builds account emails and hands them to the queue. Delivery
// happens in the sender worker, so a queue failure never fails a user flow.
package mailer

import (
	"fmt"
	"log/slog"

	"github.com/adblockpro/backend/internal/lib/sl"
	"github.com/adblockpro/backend/internal/models"
)

// Publisher pushes a message onto the email queue.
type Publisher interface {
	Publish(message any) error
}

// Mailer composes account emails and publishes them.
type Mailer struct {
	publisher Publisher
	clientURL string
	log       *slog.Logger
}

// New creates a Mailer. clientURL is the frontend base used in links.
func New(publisher Publisher, clientURL string, log *slog.Logger) *Mailer {
	return &Mailer{publisher: publisher, clientURL: clientURL, log: log}
}

func (m *Mailer) publish(msg models.EmailMessage) {
	if err := m.publisher.Publish(msg); err != nil {
		m.log.Error("failed to publish email", slog.String("to", msg.To), sl.Err(err))
	}
}

// SendVerificationEmail mails the email-confirmation link.
func (m *Mailer) SendVerificationEmail(to, name, verificationToken string) {
	link := fmt.Sprintf("%s/verify-email?token=%s", m.clientURL, verificationToken)
	m.publish(models.EmailMessage{
		To:      to,
		Subject: "Confirm your email",
		Body: fmt.Sprintf(
			"Hi %s,\r\n\r\nPlease confirm your email address by opening the link below:\r\n%s\r\n\r\nIf you did not create an account, ignore this message.\r\n",
			name, link),
	})
}

// SendPasswordResetEmail mails the reset link. The token expires in 30 minutes.
func (m *Mailer) SendPasswordResetEmail(to, name, resetToken string) {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.clientURL, resetToken)
	m.publish(models.EmailMessage{
		To:      to,
		Subject: "Reset your password",
		Body: fmt.Sprintf(
			"Hi %s,\r\n\r\nA password reset was requested for your account. Open the link below to choose a new password:\r\n%s\r\n\r\nThe link is valid for 30 minutes. If you did not request a reset, ignore this message.\r\n",
			name, link),
	})
}

// SendWelcomeEmail mails the post-verification welcome.
func (m *Mailer) SendWelcomeEmail(to, name string) {
	m.publish(models.EmailMessage{
		To:      to,
		Subject: "Welcome to AdBlock Pro",
		Body: fmt.Sprintf(
			"Hi %s,\r\n\r\nYour email is confirmed and your account is ready. Open the dashboard to get started:\r\n%s\r\n",
			name, m.clientURL),
	})
}
