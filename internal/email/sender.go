package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/hpms-api/internal/config"
)

// Sender delivers a single email with plain text and HTML bodies.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, text, html string) error
}

// NewSender returns an SMTP sender, or a log-only sender when no SMTP host
// is configured.
func NewSender(cfg config.SMTPConfig) Sender {
	if cfg.Host == "" {
		return LogSender{}
	}
	return &smtpSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

type smtpSender struct {
	from   string
	dialer *gomail.Dialer
}

func (s *smtpSender) SendEmail(ctx context.Context, to, subject, text, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)

	// gomail has no context support; the dial is abandoned, not interrupted.
	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email: %w", ctx.Err())
	}
}

// LogSender writes emails to the log instead of sending them.
type LogSender struct{}

func (LogSender) SendEmail(_ context.Context, to, subject, text, _ string) error {
	log.Info().Str("to", to).Str("subject", subject).Str("body", text).Msg("email (not sent, smtp not configured)")
	return nil
}
