package notify

import (
	"context"
	"fmt"

	"storefront/internal/config"

	"github.com/keighl/postmark"
	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// NewMailer builds the Mailer selected by cfg.Provider.
func NewMailer(cfg config.NotifyConfig, logger zerolog.Logger) (Mailer, error) {
	switch cfg.Provider {
	case "sendgrid":
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.SenderName, cfg.SenderEmail), nil
	case "postmark":
		return NewPostmarkMailer(cfg.PostmarkToken, cfg.SenderEmail), nil
	case "log", "":
		return NewLogMailer(logger), nil
	default:
		return nil, fmt.Errorf("unknown notify provider: %s", cfg.Provider)
	}
}

type sendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridMailer sends mail through the SendGrid v3 API.
func NewSendGridMailer(apiKey, senderName, senderEmail string) Mailer {
	return &sendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(senderName, senderEmail),
	}
}

func (m *sendGridMailer) Send(ctx context.Context, msg Message) error {
	email := mail.NewSingleEmail(m.from, msg.Subject, mail.NewEmail("", msg.To), msg.Text, msg.HTML)

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected message: status %d", resp.StatusCode)
	}

	return nil
}

type postmarkMailer struct {
	client *postmark.Client
	from   string
}

// NewPostmarkMailer sends mail through the Postmark API.
func NewPostmarkMailer(serverToken, senderEmail string) Mailer {
	return &postmarkMailer{
		client: postmark.NewClient(serverToken, ""),
		from:   senderEmail,
	}
}

// Send ignores ctx; the Postmark client has no context support. The
// dispatcher timeout still bounds the calling goroutine.
func (m *postmarkMailer) Send(_ context.Context, msg Message) error {
	resp, err := m.client.SendEmail(postmark.Email{
		From:     m.from,
		To:       msg.To,
		Subject:  msg.Subject,
		TextBody: msg.Text,
		HtmlBody: msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("postmark request failed: %w", err)
	}
	if resp.ErrorCode != 0 {
		return fmt.Errorf("postmark rejected message: %d %s", resp.ErrorCode, resp.Message)
	}

	return nil
}

type logMailer struct {
	logger zerolog.Logger
}

// NewLogMailer writes messages to the log instead of sending them.
func NewLogMailer(logger zerolog.Logger) Mailer {
	return &logMailer{logger: logger.With().Str("mailer", "log").Logger()}
}

func (m *logMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Text).
		Msg("email")
	return nil
}
