package checkout

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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/collabinvest/cil-storefront/internal/orders"
	"github.com/collabinvest/cil-storefront/pkg/db/models"
	"github.com/collabinvest/cil-storefront/pkg/money"
)

const ordersPath = "/api/orders"

type OrderLine struct {
	Name     string       `json:"name"`
	Quantity int          `json:"quantity"`
	Price    money.Amount `json:"price"`
}

// OrderRequest is the body of POST /api/orders.
type OrderRequest struct {
	Items           []OrderLine  `json:"items"`
	Total           money.Amount `json:"total"`
	CustomerName    string       `json:"customerName"`
	CustomerPhone   string       `json:"customerPhone"`
	CustomerEmail   string       `json:"customerEmail,omitempty"`
	CustomerAddress string       `json:"customerAddress,omitempty"`
	CustomerNotes   string       `json:"customerNotes,omitempty"`
}

type OrderResponse struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message,omitempty"`
	Order       *models.Order       `json:"order,omitempty"`
	Emails      orders.EmailSummary `json:"emails"`
	WhatsAppURL string              `json:"whatsappUrl,omitempty"`
}

// Submitter places an order with the storefront API. idempotencyKey may be
// empty.
type Submitter interface {
	SubmitOrder(ctx context.Context, req OrderRequest, idempotencyKey string) (*OrderResponse, error)
}

// HTTPSubmitter talks to the API over HTTP.
type HTTPSubmitter struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSubmitter(baseURL string, client *http.Client) (*HTTPSubmitter, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("checkout base url required")
	}
	if client == nil {
		client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   15 * time.Second,
		}
	}
	return &HTTPSubmitter{baseURL: baseURL, client: client}, nil
}

func (s *HTTPSubmitter) SubmitOrder(ctx context.Context, body OrderRequest, idempotencyKey string) (*OrderResponse, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+ordersPath, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read order response: %w", err)
	}

	var out OrderResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode order response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !out.Success {
		msg := out.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &out, &RejectedError{Status: resp.StatusCode, Message: msg}
	}
	if out.Order == nil {
		return &out, errors.New("order response missing order")
	}
	return &out, nil
}

// RejectedError is a well-formed refusal from the API.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("order rejected (%d): %s", e.Status, e.Message)
}
