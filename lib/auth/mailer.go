package auth

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/openshelf/shelfd/lib/logging"
)

// Mailer delivers a single plain-text message. Implementations must be safe
// for concurrent use.
type Mailer interface {
	Send(to, subject, body string) error
}

// --------------------------------------------------------------------------
// SMTP mailer
// --------------------------------------------------------------------------

// SMTPConfig holds the connection settings for an SMTP relay.
type SMTPConfig struct {
	// Addr is "host:port"
	Addr     string
	From     string
	Username string
	Password string
}

type smtpMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates a mailer that sends through an SMTP relay with PLAIN
// authentication. Username may be empty for open relays.
func NewSMTPMailer(cfg SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.cfg.Username != "" {
		host := m.cfg.Addr
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, host)
	}

	if err := smtp.SendMail(m.cfg.Addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Preview mailer
// --------------------------------------------------------------------------

type previewMailer struct {
	logger *zap.SugaredLogger
}

// NewPreviewMailer creates a mailer that logs messages instead of sending
// them. It is the default when no SMTP relay is configured, so the reset
// flow stays usable in development.
func NewPreviewMailer() Mailer {
	return &previewMailer{logger: logging.GetLogger("mailer")}
}

func (m *previewMailer) Send(to, subject, body string) error {
	m.logger.Infow("mail preview (no SMTP relay configured)",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}
