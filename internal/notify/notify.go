// Package notify delivers customer and vendor notifications by email.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends a rendered email through a provider.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier sends the notifications raised by order and vendor flows.
type Notifier interface {
	// SendDeliveryOTP sends the delivery code for an order to the customer.
	SendDeliveryOTP(ctx context.Context, to string, orderID uuid.UUID, code string, expiresAt time.Time) error

	// SendPasswordResetOTP sends a password reset code to a vendor.
	SendPasswordResetOTP(ctx context.Context, to, name, code string, expiresAt time.Time) error

	// SendPasswordResetConfirmation tells a vendor their password changed.
	SendPasswordResetConfirmation(ctx context.Context, to, name string) error
}

type emailNotifier struct {
	mailer Mailer
	logger zerolog.Logger
}

// NewNotifier creates a Notifier that renders messages and hands them to mailer.
func NewNotifier(mailer Mailer, logger zerolog.Logger) Notifier {
	return &emailNotifier{
		mailer: mailer,
		logger: logger.With().Str("component", "notifier").Logger(),
	}
}

func (n *emailNotifier) SendDeliveryOTP(ctx context.Context, to string, orderID uuid.UUID, code string, expiresAt time.Time) error {
	if to == "" {
		return fmt.Errorf("no contact address for order %s", orderID)
	}

	msg := Message{
		To:      to,
		Subject: "Your delivery code",
		Text: fmt.Sprintf(
			"Your order %s is out for delivery. Share code %s with the courier to confirm receipt. The code expires at %s.",
			orderID, code, expiresAt.UTC().Format(time.RFC1123)),
		HTML: fmt.Sprintf(
			"<p>Your order <strong>%s</strong> is out for delivery.</p><p>Share code <strong>%s</strong> with the courier to confirm receipt.</p><p>The code expires at %s.</p>",
			orderID, code, expiresAt.UTC().Format(time.RFC1123)),
	}

	return n.send(ctx, "delivery_otp", msg)
}

func (n *emailNotifier) SendPasswordResetOTP(ctx context.Context, to, name, code string, expiresAt time.Time) error {
	msg := Message{
		To:      to,
		Subject: "Password reset code",
		Text: fmt.Sprintf("Hello %s, your password reset code is %s. It expires at %s.",
			name, code, expiresAt.UTC().Format(time.RFC1123)),
		HTML: fmt.Sprintf("<p>Hello %s,</p><p>Your password reset code is <strong>%s</strong>.</p><p>It expires at %s.</p>",
			name, code, expiresAt.UTC().Format(time.RFC1123)),
	}

	return n.send(ctx, "password_reset_otp", msg)
}

func (n *emailNotifier) SendPasswordResetConfirmation(ctx context.Context, to, name string) error {
	msg := Message{
		To:      to,
		Subject: "Your password was changed",
		Text:    fmt.Sprintf("Hello %s, the password for your vendor account was changed.", name),
		HTML:    fmt.Sprintf("<p>Hello %s,</p><p>The password for your vendor account was changed.</p>", name),
	}

	return n.send(ctx, "password_reset_confirmation", msg)
}

func (n *emailNotifier) send(ctx context.Context, kind string, msg Message) error {
	if err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}

	n.logger.Debug().Str("kind", kind).Msg("notification sent")
	return nil
}
