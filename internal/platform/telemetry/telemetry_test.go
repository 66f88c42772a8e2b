package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/telemetry"
)

// Init* install global providers, so these tests do not run in parallel.

func TestInitTracer(t *testing.T) {
	tests := []struct {
		name     string
		exporter string
		endpoint string
		wantErr  bool
	}{
		{"stdout", telemetry.ExporterStdout, "", false},
		{"otlp over http", telemetry.ExporterOTLP, "http://collector:4318", false},
		{"otlp over https", telemetry.ExporterOTLP, "https://collector.internal:4318", false},
		{"otlp without endpoint", telemetry.ExporterOTLP, "", true},
		{"unknown exporter", "zipkin", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, err := telemetry.InitTracer(context.Background(), "edge-gateway", tt.exporter, tt.endpoint)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, tp)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
			assert.Same(t, tp, otel.GetTracerProvider())
		})
	}
}

func TestInitTracer_PropagatesTraceContextAlongsideMetadata(t *testing.T) {
	tp, err := telemetry.InitTracer(context.Background(), "edge-gateway", telemetry.ExporterStdout, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "outbound")
	defer span.End()

	carrier := propagation.MapCarrier{"tmx-correlation-id": "c-1"}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	assert.NotEmpty(t, carrier.Get("traceparent"))
	assert.Equal(t, "c-1", carrier.Get("tmx-correlation-id"), "trace injection must not disturb tmx-* keys")
}

func TestInitMeter(t *testing.T) {
	tests := []struct {
		name     string
		exporter string
		endpoint string
		wantErr  bool
	}{
		{"stdout", telemetry.ExporterStdout, "", false},
		{"otlp", telemetry.ExporterOTLP, "http://collector:4318", false},
		{"otlp without endpoint", telemetry.ExporterOTLP, "", true},
		{"unknown exporter", "prometheus", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mp, err := telemetry.InitMeter(context.Background(), "edge-gateway", tt.exporter, tt.endpoint)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, mp)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
		})
	}
}

func TestNewMetrics_RegistersEveryInstrument(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(ctx) })

	m, err := telemetry.NewMetrics(mp, "edge-gateway")
	require.NoError(t, err)

	m.ServerRequestDuration.Record(ctx, 0.01)
	m.ServerRequestTotal.Add(ctx, 1)
	m.ClientRequestDuration.Record(ctx, 0.02)
	m.ClientRequestTotal.Add(ctx, 1)
	m.UserContextCaptures.Add(ctx, 1)
	m.UserContextInjections.Add(ctx, 1)
	m.UserContextActive.Add(ctx, 1)
	m.UserContextActive.Add(ctx, -1)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	got := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			got[metric.Name] = metric.Data
		}
	}

	for _, name := range []string{
		"http.server.request.duration",
		"http.server.request.total",
		"http.client.request.duration",
		"http.client.request.total",
		"gateway.usercontext.captures",
		"gateway.usercontext.injections",
		"gateway.usercontext.active",
	} {
		assert.Contains(t, got, name)
	}

	active, ok := got["gateway.usercontext.active"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, active.DataPoints, 1)
	assert.Zero(t, active.DataPoints[0].Value)
	assert.False(t, active.IsMonotonic)
}
