package indugraph

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// instrumentation name registered with the tracer and meter providers.
const otelScope = "github.com/indugraph/indugraph"

// telemetry bundles the optional OpenTelemetry instruments of a session.
// When no providers are configured every method degrades to a no-op, so the
// factory hot path never branches on observability being enabled.
type telemetry struct {
	tracer trace.Tracer

	created       metric.Int64Counter
	merged        metric.Int64Counter
	parseFailures metric.Int64Counter
}

// newTelemetry builds the instruments from the configured providers.
// Instrument creation failures are swallowed: observability must never make
// ingestion fail.
func newTelemetry(cfg *sessionConfig) *telemetry {
	t := &telemetry{tracer: noop.NewTracerProvider().Tracer(otelScope)}

	if cfg.tracerProvider != nil {
		t.tracer = cfg.tracerProvider.Tracer(otelScope)
	}
	if cfg.meterProvider != nil {
		meter := cfg.meterProvider.Meter(otelScope)
		t.created, _ = meter.Int64Counter(
			"indugraph.entities.created",
			metric.WithDescription("Entities created on first derivation"),
			metric.WithUnit("1"),
		)
		t.merged, _ = meter.Int64Counter(
			"indugraph.entities.merged",
			metric.WithDescription("Creation requests resolved to an existing entity"),
			metric.WithUnit("1"),
		)
		t.parseFailures, _ = meter.Int64Counter(
			"indugraph.parse_failures",
			metric.WithDescription("Raw identifiers the grammar could not tokenize"),
			metric.WithUnit("1"),
		)
	}
	return t
}

// startPage opens a span covering the ingestion of one page scope.
func (t *telemetry) startPage(ctx context.Context, page PageRef) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "indugraph.page",
		trace.WithAttributes(
			attribute.Int("page.number", page.Page),
			attribute.String("page.source", page.Source),
		))
}

// recordCreated counts a first-derivation creation for the entity kind.
func (t *telemetry) recordCreated(ctx context.Context, kind string) {
	if t.created != nil {
		t.created.Add(ctx, 1, metric.WithAttributes(attribute.String("entity.kind", kind)))
	}
}

// recordMerged counts a creation request that merged into an existing
// entity.
func (t *telemetry) recordMerged(ctx context.Context, kind string) {
	if t.merged != nil {
		t.merged.Add(ctx, 1, metric.WithAttributes(attribute.String("entity.kind", kind)))
	}
}

// recordParseFailure counts a grammar rejection.
func (t *telemetry) recordParseFailure(ctx context.Context) {
	if t.parseFailures != nil {
		t.parseFailures.Add(ctx, 1)
	}
}
