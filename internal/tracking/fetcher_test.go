package tracking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabinvest/cil-storefront/pkg/enums"
)

func TestHTTPFetcher(t *testing.T) {
	var (
		mu                 sync.Mutex
		gotBody            map[string]any
		gotMethod, gotPath string
		status             = http.StatusOK
		response           = `{}`
	)
	respond := func(code int, body string) {
		mu.Lock()
		defer mu.Unlock()
		status, response = code, body
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotMethod, gotPath = r.Method, r.URL.Path
		gotBody = nil
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(srv.URL+"/", nil)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		raw, err := json.Marshal(map[string]any{"success": true, "order": sampleOrder(enums.OrderStatusProcessing)})
		require.NoError(t, err)
		respond(http.StatusOK, string(raw))

		order, err := f.Fetch(ctx, Query{OrderNumber: sampleNumber, Phone: "0803"})
		require.NoError(t, err)
		assert.Equal(t, sampleNumber, order.OrderNumber)
		assert.Equal(t, enums.OrderStatusProcessing, order.Status)
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "/api/order/track", gotPath)
		assert.Equal(t, map[string]any{"orderNumber": sampleNumber, "phone": "0803"}, gotBody)
	})

	t.Run("not found envelope", func(t *testing.T) {
		respond(http.StatusNotFound, `{"success":false,"message":"Order not found"}`)
		_, err := f.Fetch(ctx, Query{OrderNumber: sampleNumber})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("success false", func(t *testing.T) {
		respond(http.StatusOK, `{"success":false}`)
		_, err := f.Fetch(ctx, Query{OrderNumber: sampleNumber})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("server error is retryable", func(t *testing.T) {
		respond(http.StatusInternalServerError, `{"success":false,"message":"server error"}`)
		_, err := f.Fetch(ctx, Query{OrderNumber: sampleNumber})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("bare 404 is retryable", func(t *testing.T) {
		respond(http.StatusNotFound, `<html>not here</html>`)
		_, err := f.Fetch(ctx, Query{OrderNumber: sampleNumber})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestHTTPFetcherTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f, err := NewHTTPFetcher(url, nil)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), Query{OrderNumber: sampleNumber})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNewHTTPFetcherRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPFetcher("  ", nil)
	assert.Error(t, err)
}
