package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"

	"github.com/inaciosamuel465/estateflow/internal/config"
)

// Sender delivers a fully formed email message. The rawMessage includes
// headers and body.
type Sender interface {
	Send(ctx context.Context, to []string, subject string, rawMessage []byte) error
}

// SMTPSender implements Sender using net/smtp.
type SMTPSender struct {
	cfg  *config.Config
	log  zerolog.Logger
	auth smtp.Auth
	addr string
}

// NewSMTPSender returns the SMTP-backed sender, falling back to a logging
// sender when no SMTP host is configured.
func NewSMTPSender(cfg *config.Config, log zerolog.Logger) Sender {
	if cfg.SmtpHost == "" {
		log.Info().Msg("smtp host not configured, using logging email sender")
		return &LoggingSender{log: log}
	}

	auth := smtp.PlainAuth("", cfg.SmtpUsername, cfg.SmtpPassword, cfg.SmtpHost)
	addr := fmt.Sprintf("%s:%d", cfg.SmtpHost, cfg.SmtpPort)

	return &SMTPSender{cfg: cfg, log: log, auth: auth, addr: addr}
}

func (s *SMTPSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	if err := smtp.SendMail(s.addr, s.auth, s.cfg.SmtpFromAddress, to, rawMessage); err != nil {
		s.log.Error().Err(err).Strs("to", to).Msg("smtp send failed")
		return fmt.Errorf("smtp error: %w", err)
	}
	s.log.Debug().Strs("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

// LoggingSender logs email details instead of sending. Used in development
// and in tests.
type LoggingSender struct {
	log zerolog.Logger
}

func (s *LoggingSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	s.log.Info().
		Strs("to", to).
		Str("subject", subject).
		Int("bytes", len(rawMessage)).
		Msg("email delivery (logged, not sent)")
	return nil
}
