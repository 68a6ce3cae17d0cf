// Package mail delivers HTML notifications by SMTP, directly or through the job queue.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"
)

// Message is an HTML notification. An empty To falls back to the configured recipients.
type Message struct {
	To      []string `json:"to,omitempty"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Sender delivers or schedules a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTP delivers messages synchronously with go-mail.
type SMTP struct {
	cfg    *Config
	logger *slog.Logger
}

// NewSMTP creates an SMTP sender. Connections are opened per Send.
func NewSMTP(cfg *Config, logger *slog.Logger) *SMTP {
	return &SMTP{
		cfg:    cfg,
		logger: logger.With("system", "smtp"),
	}
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.cfg.Host, s.options()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.logger.Info("mail sent", "subject", msg.Subject, "to", m.GetToString())
	return nil
}

func (s *SMTP) build(msg Message) (*gomail.Msg, error) {
	to := msg.To
	if len(to) == 0 {
		to = s.cfg.To
	}

	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(to...); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.Body)
	return m, nil
}

func (s *SMTP) options() []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(s.cfg.TimeoutDuration()),
	}

	switch s.cfg.TLS {
	case TLSMandatory:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	case TLSOpportunistic:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

// Log records messages instead of delivering them. Used when mail is disabled.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a logging sender.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger.With("system", "mail")}
}

func (l *Log) Send(_ context.Context, msg Message) error {
	l.logger.Info("mail disabled, message not sent", "subject", msg.Subject, "to", msg.To)
	return nil
}
