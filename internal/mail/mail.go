// Package mail sends outbound pipeline email. The pipeline never retries
// a failed send; callers log the error and move on.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"
)

// Message is one outbound email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPConfig holds connection settings for the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer implements Mailer over SMTP.
type SMTPMailer struct {
	client *gomail.Client
	from   string
	logger *slog.Logger
}

// NewSMTPMailer creates a mailer for the given SMTP server.
func NewSMTPMailer(cfg SMTPConfig, logger *slog.Logger) (*SMTPMailer, error) {
	opts := []gomail.Option{gomail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client %s: %w", cfg.Host, err)
	}

	return &SMTPMailer{
		client: client,
		from:   cfg.From,
		logger: logger.With("component", "mail"),
	}, nil
}

// Send delivers one message. The SMTP client applies its own timeouts.
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	em := gomail.NewMsg()
	if err := em.From(m.from); err != nil {
		return fmt.Errorf("from %s: %w", m.from, err)
	}
	if err := em.AddToFormat(msg.ToName, msg.To); err != nil {
		return fmt.Errorf("to %s: %w", msg.To, err)
	}
	em.Subject(msg.Subject)
	em.SetBodyString(gomail.TypeTextHTML, msg.Body)

	m.logger.Debug("sending", "to", msg.To, "subject", msg.Subject)
	if err := m.client.DialAndSendWithContext(ctx, em); err != nil {
		return fmt.Errorf("send to %s: %w", msg.To, err)
	}
	return nil
}
