package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier delivers mail over SMTP.
type SMTPNotifier struct {
	config SMTPConfig
}

// NewSMTPNotifier creates an SMTP-backed notifier.
func NewSMTPNotifier(config SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{config: config}
}

// Send delivers one HTML message addressed to all recipients. A fresh
// connection is dialed per send; reminder volume is low enough that pooling
// is not worth the bookkeeping.
func (n *SMTPNotifier) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(n.config.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	opts := []mail.Option{
		mail.WithPort(n.config.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if n.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.config.Username),
			mail.WithPassword(n.config.Password),
		)
	}

	client, err := mail.NewClient(n.config.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
