package tracking

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
)

// ErrNotFound is terminal: the server answered but knows no such order.
var ErrNotFound = errors.New("tracking: order not found")

type Query struct {
	OrderNumber string
	Email       string
	Phone       string
}

type Fetcher interface {
	Fetch(ctx context.Context, q Query) (*orders.RedactedOrder, error)
}

const trackPath = "/api/order/track"

// HTTPFetcher posts lookups to the storefront API.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher builds a fetcher for baseURL. A nil client gets a traced
// default with a ten second timeout.
func NewHTTPFetcher(baseURL string, client *http.Client) (*HTTPFetcher, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("tracking base url required")
	}
	if client == nil {
		client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		}
	}
	return &HTTPFetcher{baseURL: baseURL, client: client}, nil
}

type trackRequest struct {
	OrderNumber string `json:"orderNumber"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

type trackResponse struct {
	Success bool                  `json:"success"`
	Order   *orders.RedactedOrder `json:"order"`
	Message string                `json:"message"`
}

func (f *HTTPFetcher) Fetch(ctx context.Context, q Query) (*orders.RedactedOrder, error) {
	body, err := json.Marshal(trackRequest{OrderNumber: q.OrderNumber, Email: q.Email, Phone: q.Phone})
	if err != nil {
		return nil, fmt.Errorf("encode track request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+trackPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build track request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("track request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read track response: %w", err)
	}

	var payload trackResponse
	decodeErr := json.Unmarshal(raw, &payload)

	// A 404 that carries the storefront envelope is a definitive miss.
	if resp.StatusCode == http.StatusNotFound && decodeErr == nil && !payload.Success {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("track request: unexpected status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode track response: %w", decodeErr)
	}
	if !payload.Success || payload.Order == nil {
		return nil, ErrNotFound
	}
	return payload.Order, nil
}
