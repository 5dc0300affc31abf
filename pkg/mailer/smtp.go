package mailer

import (
	"context"

	"gopkg.in/gomail.v2"
)

// SMTP sends mail through an SMTP relay.
type SMTP struct {
	From   string
	dialer *gomail.Dialer
}

func NewSMTP(host string, port int, username, password, from string) *SMTP {
	return &SMTP{
		From:   from,
		dialer: gomail.NewDialer(host, port, username, password),
	}
}

// Send dials, sends and hangs up. gomail has no context support, so the
// message is abandoned (not cancelled) when ctx expires first.
func (m *SMTP) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	gm := buildMessage(m.From, msg)

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(gm) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from string, msg Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	if msg.HTML != "" {
		gm.SetBody("text/html", msg.HTML)
		if msg.Text != "" {
			gm.AddAlternative("text/plain", msg.Text)
		}
	} else {
		gm.SetBody("text/plain", msg.Text)
	}
	return gm
}
