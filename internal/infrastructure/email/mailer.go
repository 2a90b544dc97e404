// Package email sends transactional mail to storefront customers.
package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MuratKus/burbarshop/internal/infrastructure/config"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Errors returned by mailers
var (
	ErrNoRecipient   = errors.New("email: recipient is required")
	ErrSendRejected  = errors.New("email: provider rejected the message")
	ErrNotConfigured = errors.New("email: provider is not configured")
)

// Message is one outbound email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers a message
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer builds the mailer selected by cfg.Provider
func NewMailer(cfg *config.EmailConfig, logger *zap.Logger) (Mailer, error) {
	switch cfg.Provider {
	case "resend":
		return NewResendMailer(cfg)
	case "log", "":
		return NewLogMailer(logger), nil
	default:
		return nil, fmt.Errorf("email: unknown provider %q", cfg.Provider)
	}
}

// ResendMailer sends messages through the Resend API
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer creates a Resend mailer. BaseURL overrides the API
// endpoint, which tests point at a local server.
func NewResendMailer(cfg *config.EmailConfig) (*ResendMailer, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resend.NewCustomClient(&http.Client{Timeout: timeout}, cfg.APIKey)
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("email: invalid base url: %w", err)
		}
		client.BaseURL = base
	}
	return &ResendMailer{client: client, from: cfg.From}, nil
}

// Send delivers msg. A provider failure is an error wrapping ErrSendRejected.
func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}

	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendRejected, err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message envelope
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	m.logger.Info("Email not sent (log provider)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)))
	return nil
}
