package email

import (
	"context"
	"fmt"
	"html"

	"github.com/rs/zerolog"
)

// Sender delivers one message to one recipient
type Sender interface {
	Send(ctx context.Context, to Recipient, subject, body string) error
}

// Recipient is an addressable mailbox
type Recipient struct {
	Email string
	Name  string
}

// From is the sender identity shared by all providers
type From struct {
	Email string
	Name  string
}

func (f From) header() string {
	if f.Name == "" {
		return f.Email
	}
	return fmt.Sprintf("%s <%s>", f.Name, f.Email)
}

// LogSender writes messages to the log instead of delivering them. Used when no
// provider is configured.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message
func (s *LogSender) Send(_ context.Context, to Recipient, subject, body string) error {
	s.logger.Info().
		Str("toEmail", to.Email).
		Str("subject", subject).
		Int("bodyLength", len(body)).
		Msg("Email provider not configured - message logged instead of sent")
	return nil
}

// RenderHTML wraps a plain text body into the HTML layout used for all notifications
func RenderHTML(title, greetingName, text string) string {
	return fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">%s</h2>
				<p>Hello %s,</p>
				<p>%s</p>
				<p>Best regards,<br>The Internship Office</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(title), html.EscapeString(greetingName), html.EscapeString(text))
}
