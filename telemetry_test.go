package indugraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/indugraph/indugraph/graph"
)

func TestStartPageRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	s := newTestSession(t, WithTracerProvider(tp))

	ctx, span := s.StartPage(context.Background(), PageRef{Page: 7, Source: "a.pdf"})
	require.NotNil(t, ctx)

	_, err := s.CreateTarget("=A1", graph.KindDevice, nil, &PageRef{Page: 7, Source: "a.pdf"})
	require.NoError(t, err)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "indugraph.page", spans[0].Name())

	attrs := spans[0].Attributes()
	got := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		got[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, int64(7), got["page.number"])
	assert.Equal(t, "a.pdf", got["page.source"])
}

func TestTelemetryNoopWithoutProviders(t *testing.T) {
	s := newTestSession(t)

	ctx, span := s.StartPage(context.Background(), PageRef{Page: 1})
	require.NotNil(t, ctx)
	span.End()

	// Creation and parse-failure paths run without instruments configured.
	_, err := s.CreateTarget("=A1", graph.KindDevice, nil, nil)
	require.NoError(t, err)
	_, err = s.CreateTag("garbage", nil)
	require.Error(t, err)
}

func TestTelemetryWithMeterProvider(t *testing.T) {
	s := newTestSession(t, WithMeterProvider(noopmetric.NewMeterProvider()))

	// Counters are registered; created, merged and failed paths all record.
	_, err := s.CreateTarget("=A1", graph.KindDevice, nil, nil)
	require.NoError(t, err)
	_, err = s.CreateTarget("=A1", graph.KindDevice, nil, nil)
	require.NoError(t, err)
	_, err = s.CreateTag("garbage", nil)
	require.Error(t, err)
}
