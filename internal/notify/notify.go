// Package notify delivers change-record notifications.
package notify

import (
	"context"
	"fmt"

	"pc-inventory/internal/config"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type Message struct {
	Subject string
	Body    string
}

// Notifier delivers a message synchronously. A non-nil error means the
// message was not delivered.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// New returns the email notifier when notifications are enabled and a
// log-only notifier otherwise.
func New(cfg config.NotificationConfig, logger *zap.Logger) (Notifier, error) {
	if !cfg.Enabled {
		return NewLogNotifier(logger), nil
	}
	return NewEmailNotifier(cfg, logger)
}

type EmailNotifier struct {
	client    *mail.Client
	fromEmail string
	toEmails  []string
	logger    *zap.Logger
}

func NewEmailNotifier(cfg config.NotificationConfig, logger *zap.Logger) (*EmailNotifier, error) {
	opts := []mail.Option{mail.WithPort(cfg.SMTP.Port)}
	if cfg.SMTP.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTP.Username),
			mail.WithPassword(cfg.SMTP.Password),
		)
	}
	if cfg.SMTP.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(cfg.SMTP.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &EmailNotifier{
		client:    client,
		fromEmail: cfg.From,
		toEmails:  cfg.To,
		logger:    logger,
	}, nil
}

func (e *EmailNotifier) Notify(ctx context.Context, m Message) error {
	msg := mail.NewMsg()
	if err := msg.From(e.fromEmail); err != nil {
		return fmt.Errorf("failed to set From address: %w", err)
	}

	if err := msg.To(e.toEmails...); err != nil {
		return fmt.Errorf("failed to set To address: %w", err)
	}

	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)

	if err := e.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}

	e.logger.Debug("notification sent", zap.String("subject", m.Subject), zap.Strings("to", e.toEmails))
	return nil
}

// LogNotifier writes notifications to the log instead of sending them.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, m Message) error {
	l.logger.Info("notification", zap.String("subject", m.Subject), zap.String("body", m.Body))
	return nil
}

// Nop discards every message.
type Nop struct{}

func (Nop) Notify(context.Context, Message) error { return nil }
