package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/collabinvest/cil-storefront/pkg/telemetry"
)

// Tracing opens a server span per request around the whole router. Health
// and metrics probes are not traced.
func Tracing(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, service,
			otelhttp.WithFilter(func(r *http.Request) bool {
				switch r.URL.Path {
				case "/health/live", "/health/ready", "/metrics":
					return false
				}
				return true
			}),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}

// RouteTag runs inside the router and copies the matched chi pattern onto
// the span opened by Tracing.
func RouteTag() func(http.Handler) http.Handler {
	return telemetry.WithHTTPRoute(routePattern)
}

func routePattern(r *http.Request) string {
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		return ctx.RoutePattern()
	}
	return ""
}
