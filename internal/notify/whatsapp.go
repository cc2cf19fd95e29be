package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/donglares/agendia-platform/pkg/logging"
)

// WhatsAppSender talks to the WhatsApp bridge sidecar over HTTP. The bridge
// owns the WhatsApp session; this client only posts outbound messages.
type WhatsAppSender struct {
	baseURL     string
	client      *http.Client
	maxAttempts int
	baseDelay   time.Duration
	logger      *logging.Logger
}

// WhatsAppConfig holds configuration for the bridge client.
type WhatsAppConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
}

// NewWhatsAppSender creates a bridge client. Returns nil when no base URL is
// configured so callers can fall back to another channel.
func NewWhatsAppSender(cfg WhatsAppConfig, logger *logging.Logger) *WhatsAppSender {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	return &WhatsAppSender{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		client:      &http.Client{Timeout: cfg.Timeout},
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		logger:      logger,
	}
}

type sendTextRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// SendText posts the message to the bridge, retrying transient failures with
// exponential backoff. 4xx responses are not retried.
func (s *WhatsAppSender) SendText(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(sendTextRequest{To: to, Text: body})
	if err != nil {
		return fmt.Errorf("notify: encode whatsapp payload: %w", err)
	}

	var lastErr error
	delay := s.baseDelay
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("notify: whatsapp send aborted: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}

		lastErr = s.post(ctx, payload)
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		s.logger.Warn("whatsapp send failed, retrying",
			"to", to, "attempt", attempt, "error", lastErr)
	}
	return fmt.Errorf("notify: whatsapp send failed after %d attempts: %w", s.maxAttempts, lastErr)
}

type httpStatusError struct {
	status int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("notify: whatsapp bridge returned status %d", e.status)
}

func (s *WhatsAppSender) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/send-text", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: whatsapp bridge unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &httpStatusError{status: resp.StatusCode}
	}
	return nil
}

func isRetryable(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.status >= 500
	}
	// Network-level errors are retryable.
	return true
}

var _ TextSender = (*WhatsAppSender)(nil)
