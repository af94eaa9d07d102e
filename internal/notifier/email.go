package notifier

import (
	"context"
	"fmt"

	"github.com/slotwatch/slotwatch/internal/constants"
	"github.com/ubuntu/decorate"
	"github.com/wneessen/go-mail"
)

// EmailConfig holds the credentials of the email channel.
type EmailConfig struct {
	Sender    string `mapstructure:"sender" yaml:"sender"`
	Password  string `mapstructure:"password" yaml:"password"`
	Recipient string `mapstructure:"recipient" yaml:"recipient"`
}

// complete reports whether every credential is set.
func (c EmailConfig) complete() bool {
	return c.Sender != "" && c.Password != "" && c.Recipient != ""
}

type mailClient interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type dialer func(host string, port int, cfg EmailConfig) (mailClient, error)

// Email sends notifications as a plain text mail over an implicit TLS SMTP session.
type Email struct {
	cfg  EmailConfig
	host string
	port int
	dial dialer
}

// EmailOptions represents an optional function to override Email default values.
type EmailOptions func(*Email)

// WithSMTPServer sets the mail relay. Empty host or zero port keep the defaults.
func WithSMTPServer(host string, port int) EmailOptions {
	return func(e *Email) {
		if host != "" {
			e.host = host
		}
		if port != 0 {
			e.port = port
		}
	}
}

// NewEmail returns the email channel. The relay defaults to smtp.gmail.com:465.
func NewEmail(cfg EmailConfig, args ...EmailOptions) Email {
	e := Email{
		cfg:  cfg,
		host: constants.DefaultSMTPHost,
		port: constants.DefaultSMTPPort,
		dial: dialSMTP,
	}
	for _, opt := range args {
		opt(&e)
	}
	return e
}

// Name implements Channel.
func (Email) Name() string {
	return "email"
}

// Send implements Channel. It opens one SMTP session, authenticated as the sender, per call.
func (e Email) Send(ctx context.Context, subject, body string) (err error) {
	if !e.cfg.complete() {
		return fmt.Errorf("%w: sender, password and recipient are required", ErrIncompleteConfig)
	}
	defer decorate.OnError(&err, "could not send email to %s", e.cfg.Recipient)

	m, err := e.newMsg(subject, body)
	if err != nil {
		return err
	}

	c, err := e.dial(e.host, e.port, e.cfg)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return c.DialAndSendWithContext(ctx, m)
}

func (e Email) newMsg(subject, body string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(e.cfg.Sender); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(e.cfg.Recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)
	return m, nil
}

func dialSMTP(host string, port int, cfg EmailConfig) (mailClient, error) {
	return mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Sender),
		mail.WithPassword(cfg.Password),
	)
}
