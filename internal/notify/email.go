package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/donglares/agendia-platform/pkg/logging"
)

// SendGridSender delivers notifications over email for clients who book with
// an email address instead of a phone number.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	subject   string
	logger    *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	Subject   string
}

// NewSendGridSender creates a SendGrid-backed sender. Returns nil when no API
// key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = "Agendia"
	}
	if cfg.Subject == "" {
		cfg.Subject = "Appointment update"
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		subject:   cfg.Subject,
		logger:    logger,
	}
}

// SendText sends the body as a plain-text email.
func (s *SendGridSender) SendText(ctx context.Context, to, body string) error {
	if s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	dest := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, s.subject, dest, body, body)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", to)
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", "status", response.StatusCode, "to", to)
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	s.logger.Info("email sent via sendgrid", "to", to, "status", response.StatusCode)
	return nil
}

var _ TextSender = (*SendGridSender)(nil)
