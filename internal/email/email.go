// Package email delivers notification emails over SMTP.
package email

import "context"

// Sender delivers notification emails.
type Sender interface {
	SendNotificationEmail(ctx context.Context, toEmail, title, content string) error
}

// NoopSender is used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendNotificationEmail(_ context.Context, _, _, _ string) error {
	return nil
}
