package mailer

import (
	"errors"
	"fmt"
	"net/smtp"

	"github.com/jobpilot/apiserver/config"
)

// Sender delivers a single email with best-effort semantics.
type Sender interface {
	Send(to, subject, body string) error
}

// New constructs a Sender for the configured provider.
func New(cfg config.MailConfig) (Sender, error) {
	switch cfg.Provider {
	case "smtp":
		return newSMTPSender(cfg)
	case "sendgrid":
		return newSendGridSender(cfg)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

// smtpSender delivers mail over plain SMTP.
type smtpSender struct {
	cfg  config.SMTPConfig
	from string
}

func newSMTPSender(cfg config.MailConfig) (*smtpSender, error) {
	if cfg.SMTP.Host == "" || cfg.SMTP.Port == "" || cfg.From == "" {
		return nil, errors.New("smtp host, port and from address are required")
	}
	return &smtpSender{cfg: cfg.SMTP, from: cfg.From}, nil
}

func (s *smtpSender) Send(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s", to, subject, body))
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	return smtp.SendMail(addr, auth, s.from, []string{to}, msg)
}
