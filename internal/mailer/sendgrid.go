package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jobpilot/apiserver/config"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridTimeout = 30 * time.Second

// sendGridSender delivers mail through the SendGrid API.
type sendGridSender struct {
	apiKey string
	from   string
}

func newSendGridSender(cfg config.MailConfig) (*sendGridSender, error) {
	if cfg.SendGrid.APIKey == "" || cfg.From == "" {
		return nil, errors.New("sendgrid api key and from address are required")
	}
	return &sendGridSender{apiKey: cfg.SendGrid.APIKey, from: cfg.From}, nil
}

func (s *sendGridSender) Send(to, subject, body string) error {
	from := mail.NewEmail("", s.from)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, body, body)

	client := sendgrid.NewSendClient(s.apiKey)
	ctx, cancel := context.WithTimeout(context.Background(), sendGridTimeout)
	defer cancel()

	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
	}
	return nil
}
