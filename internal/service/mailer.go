package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type EmailMessage struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// EmailReceipt is the provider's acknowledgement of an accepted message.
type EmailReceipt struct {
	ID string `json:"id"`
}

type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) (*EmailReceipt, error)
}

// ResendMailer delivers messages through the Resend API client.
type ResendMailer struct {
	client *resend.Client
}

// NewResendMailer keeps the SDK's default endpoint when baseURL is empty or
// unparsable.
func NewResendMailer(baseURL, apiKey string, timeout time.Duration) *ResendMailer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resend.NewCustomClient(&http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, apiKey)
	if baseURL != "" {
		// Request paths are relative, so the base needs its trailing slash.
		if u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/"); err == nil {
			client.BaseURL = u
		}
	}
	return &ResendMailer{client: client}
}

func (m *ResendMailer) Send(ctx context.Context, msg EmailMessage) (*EmailReceipt, error) {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return nil, fmt.Errorf("send email: %w", err)
	}
	return &EmailReceipt{ID: sent.Id}, nil
}

// LogMailer writes messages to the log instead of delivering them. Used in
// local environments without a provider key.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg EmailMessage) (*EmailReceipt, error) {
	id := uuid.NewString()
	m.logger.InfoContext(ctx, "email captured",
		"id", id,
		"from", msg.From,
		"to", strings.Join(msg.To, ","),
		"subject", msg.Subject,
	)
	return &EmailReceipt{ID: id}, nil
}
