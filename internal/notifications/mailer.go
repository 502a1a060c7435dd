package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/collabinvest/cil-storefront/pkg/config"
	"github.com/collabinvest/cil-storefront/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Email is one outbound plain-text message.
type Email struct {
	From    string
	To      string
	Subject string
	Text    string
}

// Mailer is the transport. It returns the provider message id.
type Mailer interface {
	Send(ctx context.Context, email Email) (string, error)
}

// NewMailer picks the transport named in config.
func NewMailer(cfg config.MailConfig, logg *logger.Logger) (Mailer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Transport)) {
	case "", "log":
		return NewLogMailer(logg), nil
	case "resend":
		return NewResendMailer(cfg)
	default:
		return nil, fmt.Errorf("unsupported mail transport %q", cfg.Transport)
	}
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logg *logger.Logger
}

func NewLogMailer(logg *logger.Logger) *LogMailer {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogMailer{logg: logg}
}

func (m *LogMailer) Send(ctx context.Context, email Email) (string, error) {
	id := "log-" + uuid.NewString()
	m.logg.Info(m.logg.WithFields(ctx, map[string]any{
		"to":         email.To,
		"subject":    email.Subject,
		"message_id": id,
		"body":       email.Text,
	}), "mail.logged")
	return id, nil
}

// ResendMailer posts to the Resend email API.
type ResendMailer struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewResendMailer(cfg config.MailConfig) (*ResendMailer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("resend api key not set")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ResendMailer{
		apiKey:   cfg.APIKey,
		endpoint: cfg.Endpoint,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

type resendResponse struct {
	ID string `json:"id"`
}

func (m *ResendMailer) Send(ctx context.Context, email Email) (string, error) {
	body, err := json.Marshal(resendRequest{
		From:    email.From,
		To:      []string{email.To},
		Subject: email.Subject,
		Text:    email.Text,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("resend: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out resendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("resend: decode response: %w", err)
	}
	return out.ID, nil
}
