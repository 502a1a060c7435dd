package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/collabinvest/cil-storefront/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracerProviderDisabled(t *testing.T) {
	shutdown, err := InitTracerProvider(context.Background(), config.TelemetryConfig{}, "cil-api")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitMeterProviderRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	shutdown, err := InitMeterProvider(reg, "cil-api", "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, err = reg.Gather()
	require.NoError(t, err)
}

func TestWithHTTPRouteCallsNext(t *testing.T) {
	called := false
	h := WithHTTPRoute(func(*http.Request) string { return "/api/orders" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
