// Package sender delivers queued emails over SMTP.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/adblockpro/backend/internal/lib/sl"
	"github.com/adblockpro/backend/internal/lib/smtp"
	"github.com/adblockpro/backend/internal/models"
)

// Service consumes email messages and delivers them through the transport.
type Service struct {
	transport smtp.TransportInterface
	fromName  string
	fromEmail string
	log       *slog.Logger
}

// New creates a sender Service. fromEmail falls back to the SMTP user when empty.
func New(transport smtp.TransportInterface, fromName, fromEmail string, log *slog.Logger) *Service {
	if fromEmail == "" {
		fromEmail = transport.GetSMTPUser()
	}
	return &Service{
		transport: transport,
		fromName:  fromName,
		fromEmail: fromEmail,
		log:       log,
	}
}

// HandleMessage decodes one queued message and sends it. A returned error
// makes the consumer requeue the delivery.
func (s *Service) HandleMessage(body []byte) error {
	const op = "sender.HandleMessage"

	var msg models.EmailMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		// malformed payloads would loop forever on requeue, drop them
		s.log.Error("dropping malformed email message", sl.Err(err))
		return nil
	}
	if err := s.send(msg); err != nil {
		s.log.Error("failed to send email", slog.String("to", msg.To), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("email sent", slog.String("to", msg.To), slog.String("subject", msg.Subject))
	return nil
}

func (s *Service) send(msg models.EmailMessage) error {
	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			s.log.Debug("smtp close", sl.Err(closeErr))
		}
	}()

	if err := client.Mail(s.fromEmail); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}

	headers := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n",
		s.fromName, s.fromEmail, msg.To, msg.Subject)
	if _, err := w.Write([]byte(headers + msg.Body)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	return client.Quit()
}
