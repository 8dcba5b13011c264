// Package notify delivers best-effort notifications to record authors. Review
// transitions must never fail because a notification could not be sent, so
// implementations log and swallow their own errors.
package notify

import (
	"context"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Notification describes a review outcome for the record's author.
type Notification struct {
	RecipientEmail string
	RecipientName  string
	Subject        string
	Body           string
}

type Notifier interface {
	// Notify delivers best-effort; it returns an error for observability but
	// callers must not fail the triggering operation on it.
	Notify(ctx context.Context, n Notification) error
}

// Mailer sends notifications over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailerFromEnv builds a Mailer from SMTP_* env vars, or nil when SMTP is
// unconfigured (callers fall back to the log notifier).
func NewMailerFromEnv() *Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil
	}
	port := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			port = n
		}
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "no-reply@siperum.go.id"
	}
	return &Mailer{
		dialer: gomail.NewDialer(host, port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS")),
		from:   from,
	}
}

func (m *Mailer) Notify(ctx context.Context, n Notification) error {
	if n.RecipientEmail == "" {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetAddressHeader("To", n.RecipientEmail, n.RecipientName)
	msg.SetHeader("Subject", n.Subject)
	msg.SetBody("text/plain", n.Body)

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// LogNotifier is the fallback sink when no SMTP server is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) error {
	log.Printf("[notify] to=%s subject=%q", n.RecipientEmail, n.Subject)
	return nil
}

// FromEnv picks the mailer when configured, otherwise the log sink.
func FromEnv() Notifier {
	if m := NewMailerFromEnv(); m != nil {
		return m
	}
	return LogNotifier{}
}
