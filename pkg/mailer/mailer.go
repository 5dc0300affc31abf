package mailer

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// Message is a single outbound email. HTML is optional; Text is the fallback body.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer is the mail provider collaborator.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var ErrNoRecipient = errors.New("no recipient specified")

// Disabled drops every message. Used when MAIL_SEND_ENABLED=false.
type Disabled struct {
	Logger *logrus.Logger
}

func (d Disabled) Send(_ context.Context, msg Message) error {
	if d.Logger != nil {
		d.Logger.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Debug("mail sending disabled, message dropped")
	}
	return nil
}
