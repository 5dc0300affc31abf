package templates

import (
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
	}
}

// NewCodeData builds the data for the verification and reset code emails.
func NewCodeData(appName, name, email, code string, opts ...Option) EmailData {
	d := EmailData{AppName: appName, Name: name, Email: email, Code: code}
	for _, o := range opts {
		o(&d)
	}
	return d
}
