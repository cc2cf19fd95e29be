// Package notify delivers outbound client notifications. Delivery is
// advisory: callers treat failures as log-and-continue, never as a reason to
// roll back a committed booking.
package notify

import (
	"context"

	"github.com/donglares/agendia-platform/pkg/logging"
)

// TextSender sends a free-form text message to a destination address. The
// address format depends on the channel (WhatsApp number, email address).
type TextSender interface {
	SendText(ctx context.Context, to, body string) error
}

// StubSender is a no-op sender for testing or when no channel is configured.
type StubSender struct {
	logger *logging.Logger
}

// NewStubSender creates a stub sender that logs but doesn't send.
func NewStubSender(logger *logging.Logger) *StubSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubSender{logger: logger}
}

// SendText logs but doesn't send.
func (s *StubSender) SendText(ctx context.Context, to, body string) error {
	s.logger.Info("stub sender: would send", "to", to, "body_preview", truncate(body, 50))
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ TextSender = (*StubSender)(nil)
