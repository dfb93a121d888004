// Package notify delivers outbound notifications to users. The only real
// transport is SMTP; when no SMTP host is configured every send downgrades to
// a log line so development environments work without a mail relay.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/viatero/expense-system/internal/core/ports"
)

// SMTPConfig holds the settings for the outbound mail relay. An empty Host
// disables real delivery.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends notifications over SMTP.
type Mailer struct {
	cfg SMTPConfig
	log zerolog.Logger
}

// NewMailer creates a Mailer. The returned Mailer is safe for concurrent use;
// each Send opens its own SMTP connection.
func NewMailer(cfg SMTPConfig, log zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// Send delivers one notification. Recipients are account logins, which double
// as mail addresses.
func (m *Mailer) Send(ctx context.Context, n ports.Notification) error {
	if m.cfg.Host == "" {
		m.log.Info().
			Str("recipient", n.Recipient).
			Str("kind", n.Kind).
			Str("subject", n.Subject).
			Msg("smtp not configured, notification logged only")
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", n.Recipient)
	msg.SetHeader("Subject", n.Subject)
	msg.SetBody("text/plain", n.Body)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)

	done := make(chan error, 1)
	go func() { done <- dialer.DialAndSend(msg) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
	}

	m.log.Debug().
		Str("recipient", n.Recipient).
		Str("kind", n.Kind).
		Msg("notification delivered")
	return nil
}

var _ ports.Notifier = (*Mailer)(nil)
