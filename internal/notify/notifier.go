package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Notifier delivers a composed message to a campaign owner. Delivery is
// fire-and-forget from the engine's point of view: failures are logged
// by the caller and never affect a run's outcome.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogNotifier logs notifications instead of sending them. Used when ENV=local.
type LogNotifier struct {
	logger *slog.Logger
}

func (n *LogNotifier) Send(_ context.Context, recipient, subject, body string) error {
	n.logger.Info("notification (local dev)", "to", recipient, "subject", subject, "body", body)
	return nil
}

// ResendNotifier sends notifications via the Resend API.
type ResendNotifier struct {
	client *resend.Client
	from   string
}

func (n *ResendNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{recipient},
		Subject: subject,
		Text:    body,
	}
	_, err := n.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

// NewNotifier returns a LogNotifier for ENV=local, ResendNotifier otherwise.
func NewNotifier(env, apiKey, from string, logger *slog.Logger) Notifier {
	if env == "local" {
		return &LogNotifier{logger: logger.With("component", "notify")}
	}
	return &ResendNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}
