// Package notify sends transactional email: inquiry notifications and listing moderation results.
package notify

import (
	"context"

	"go.uber.org/zap"
)

// Message is one outgoing email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer delivers a message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer logs recipients and subjects instead of sending. Used when no provider is configured.
type LogMailer struct {
	Log *zap.Logger
}

// Send implements Mailer.
func (m LogMailer) Send(_ context.Context, msg Message) error {
	if m.Log != nil {
		m.Log.Info("email not sent (no provider configured)", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	}
	return nil
}
