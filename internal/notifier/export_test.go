package notifier

import (
	"context"

	"github.com/wneessen/go-mail"
)

// MailClient is a fake SMTP client recording the messages it sends.
type MailClient struct {
	Err  error
	Msgs []*mail.Msg
}

// DialAndSendWithContext implements mailClient.
func (c *MailClient) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if c.Err != nil {
		return c.Err
	}
	c.Msgs = append(c.Msgs, messages...)
	return nil
}

// WithMailClient returns a copy of the email channel using c instead of a real SMTP session.
// dialed is incremented each time a session would be opened.
func (e Email) WithMailClient(c *MailClient, dialed *int) Email {
	e.dial = func(string, int, EmailConfig) (mailClient, error) {
		*dialed++
		return c, nil
	}
	return e
}

// Server returns the mail relay of the email channel.
func (e Email) Server() (host string, port int) {
	return e.host, e.port
}

// WithEndpoint returns a copy of the telegram channel talking to endpoint, a format string
// taking the token and the method.
func (t Telegram) WithEndpoint(endpoint string) Telegram {
	t.endpoint = endpoint
	return t
}
