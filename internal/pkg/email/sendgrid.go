package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender delivers mail through the SendGrid v3 API
type SendGridSender struct {
	client *sendgrid.Client
	from   From
	logger zerolog.Logger
}

// NewSendGridSender creates a new SendGridSender
func NewSendGridSender(apiKey string, from From, logger zerolog.Logger) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
		logger: logger,
	}
}

// Send delivers an HTML email. Any non-2xx response is an error.
func (s *SendGridSender) Send(ctx context.Context, to Recipient, subject, body string) error {
	message := mail.NewSingleEmail(
		mail.NewEmail(s.from.Name, s.from.Email),
		subject,
		mail.NewEmail(to.Name, to.Email),
		"",
		body,
	)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error().
			Int("status", resp.StatusCode).
			Str("toEmail", to.Email).
			Msg("SendGrid rejected message")
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
