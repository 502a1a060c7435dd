package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// InitMeterProvider bridges OpenTelemetry instruments (otelhttp server and
// client metrics) into the given Prometheus registerer so they are served
// from the same /metrics endpoint as the native collectors.
func InitMeterProvider(reg prometheus.Registerer, serviceName, serviceVersion string) (ShutdownFunc, error) {
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(newResource(serviceName, serviceVersion)),
	)
	otel.SetMeterProvider(mp)

	return mp.Shutdown, nil
}
