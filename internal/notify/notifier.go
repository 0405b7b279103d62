// Package notify delivers meeting mail: scheduling confirmations, update
// notices, and queued reminders. Delivery goes over SMTP; recipients are
// resolved from a name directory.
package notify

import (
	"context"
	"log/slog"
)

// Notifier sends an HTML mail to a set of recipients.
type Notifier interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// NoopNotifier drops mail on the floor, logging each send. Used when SMTP is
// not configured so the rest of the system keeps working.
type NoopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier creates a notifier that logs instead of sending.
func NewNoopNotifier(logger *slog.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

// Send logs the mail and reports success.
func (n *NoopNotifier) Send(_ context.Context, to []string, subject, _ string) error {
	n.logger.Info("mail delivery skipped, SMTP not configured",
		"recipients", len(to),
		"subject", subject,
	)
	return nil
}
