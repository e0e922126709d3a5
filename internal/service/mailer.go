package service

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/amarthakur0/go-api-template/internal/config"
)

// Mailer sends notification mail. Callers treat delivery as best-effort.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// smtpMailer delivers over plain SMTP.
type smtpMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer creates a mailer for the configured SMTP relay.
func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
	}
	if m.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.User),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}

// NoopMailer discards all mail. Used when no SMTP host is configured and in
// tests.
type NoopMailer struct{}

func (NoopMailer) Send(ctx context.Context, to, subject, body string) error { return nil }
