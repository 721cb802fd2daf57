package indugraph

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Session.
type Option func(*sessionConfig)

// sessionConfig holds configuration gathered from options before the
// Session is built.
type sessionConfig struct {
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	source         string
}

// WithLogger sets the structured logger used for ingestion diagnostics.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *sessionConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracerProvider enables OpenTelemetry spans around page ingestion
// scopes. Without it, tracing is a no-op.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *sessionConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider enables OpenTelemetry counters for created/merged
// entities and parse failures. Without it, metrics are a no-op.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *sessionConfig) {
		c.meterProvider = mp
	}
}

// WithSource sets the default source document name recorded for page
// references that do not name one themselves.
func WithSource(source string) Option {
	return func(c *sessionConfig) {
		c.source = source
	}
}
