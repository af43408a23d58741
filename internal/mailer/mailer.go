// Package mailer delivers transactional email through an SMTP relay.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

var (
	ErrRelayUnreachable = errors.New("mail relay unreachable")
	ErrDeliveryFailure  = errors.New("mail delivery failed")
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers one message. Implementations must honor ctx cancellation.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	Host     string
	Port     int
	Secure   bool
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

type SMTPMailer struct {
	cfg Config
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPMailer{cfg: cfg}
}

// Send opens a fresh connection per message. The relay is contacted before any
// envelope is sent, so connection problems surface as ErrRelayUnreachable and
// rejections after that as ErrDeliveryFailure.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	email, err := m.compose(msg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailure, err)
	}

	client, err := mail.NewClient(m.cfg.Host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRelayUnreachable, err)
	}

	if err := client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrRelayUnreachable, err)
	}
	defer client.Close()

	if err := client.Send(email); err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailure, err)
	}
	return nil
}

func (m *SMTPMailer) compose(msg Message) (*mail.Msg, error) {
	email := mail.NewMsg()
	if err := email.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.cfg.From, err)
	}
	if err := email.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	email.Subject(msg.Subject)
	email.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		email.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return email, nil
}

func (m *SMTPMailer) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(m.cfg.Timeout),
	}
	if m.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return opts
}
