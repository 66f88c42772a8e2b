package usercontext_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/telemetry"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
)

func TestCapture_AllFieldsFromHTTPHeaders(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("tmx-correlation-id", "c-1")
	h.Set("TMX-AUTH-TOKEN", "tok")
	h.Set("Tmx-User-Id", "u-42")
	h.Set("tmx-org-id", "o-7")

	store := usercontext.NewStore()
	ctx, _ := store.Capture(context.Background(), propagation.HeaderCarrier(h))

	md, err := usercontext.Current(ctx)
	require.NoError(t, err)

	want := map[usercontext.Field]string{
		usercontext.CorrelationID: "c-1",
		usercontext.AuthToken:     "tok",
		usercontext.UserID:        "u-42",
		usercontext.OrgID:         "o-7",
	}
	for f, v := range want {
		got, ok := md.Get(f)
		assert.Truef(t, ok, "%s not captured", f)
		assert.Equalf(t, v, got, "%s", f)
	}
}

func TestCapture_CaseInsensitiveMapCarrier(t *testing.T) {
	t.Parallel()

	carrier := propagation.MapCarrier{
		"TMX-Correlation-ID": "c-upper",
		"tmx-user-id":        "u-lower",
	}

	store := usercontext.NewStore()
	ctx, _ := store.Capture(context.Background(), carrier)

	v, ok := usercontext.Lookup(ctx, usercontext.CorrelationID)
	assert.True(t, ok)
	assert.Equal(t, "c-upper", v)

	v, ok = usercontext.Lookup(ctx, usercontext.UserID)
	assert.True(t, ok)
	assert.Equal(t, "u-lower", v)
}

func TestCapture_DuplicateCasingsPickDeterministically(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		carrier propagation.MapCarrier
		want    string
	}{
		{"exact lowercase key wins", propagation.MapCarrier{"tmx-user-id": "lower", "TMX-USER-ID": "upper", "Tmx-User-Id": "title"}, "lower"},
		{"otherwise first variant in sort order", propagation.MapCarrier{"Tmx-User-Id": "title", "TMX-USER-ID": "upper"}, "upper"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := usercontext.NewStore()
			for range 50 {
				ctx, _ := store.Capture(context.Background(), tt.carrier)
				got, ok := usercontext.Lookup(ctx, usercontext.UserID)
				store.Unbind(ctx)
				require.True(t, ok)
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCapture_AbsentKeysStayUnset(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("tmx-correlation-id", "c-1")
	h.Set("tmx-user-id", "u-42")

	store := usercontext.NewStore()
	_, md := store.Capture(context.Background(), propagation.HeaderCarrier(h))

	_, ok := md.AuthToken()
	assert.False(t, ok)
	_, ok = md.OrgID()
	assert.False(t, ok)
}

func TestCapture_EmptyHeaderValueIsPresent(t *testing.T) {
	t.Parallel()

	h := http.Header{"Tmx-Org-Id": {""}}

	store := usercontext.NewStore()
	_, md := store.Capture(context.Background(), propagation.HeaderCarrier(h))

	v, ok := md.OrgID()
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestCapture_NoHeadersNeverFails(t *testing.T) {
	t.Parallel()

	store := usercontext.NewStore()

	ctx, md := store.Capture(context.Background(), propagation.HeaderCarrier(http.Header{}))
	require.NotNil(t, md)
	assert.Equal(t, 0, md.Snapshot().Len())

	ctx2, md2 := store.Capture(ctx, nil)
	require.NotNil(t, md2)
	_, err := usercontext.Current(ctx2)
	require.NoError(t, err)

	assert.Equal(t, int64(2), store.Active())
}

func TestCapture_RecordsMetrics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(ctx) })

	metrics, err := telemetry.NewMetrics(mp, "test")
	require.NoError(t, err)

	store := usercontext.NewStore(usercontext.WithMetrics(metrics))

	h := http.Header{}
	h.Set("tmx-correlation-id", "c-1")
	h.Set("tmx-user-id", "u-1")
	bound, _ := store.Capture(ctx, propagation.HeaderCarrier(h))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	captures := findSum(t, rm, "gateway.usercontext.captures")
	require.Len(t, captures.DataPoints, 1)
	assert.Equal(t, int64(1), captures.DataPoints[0].Value)
	present, ok := captures.DataPoints[0].Attributes.Value(telemetry.AttrFieldsPresent)
	require.True(t, ok)
	assert.Equal(t, attribute.IntValue(2), present)

	active := findSum(t, rm, "gateway.usercontext.active")
	require.Len(t, active.DataPoints, 1)
	assert.Equal(t, int64(1), active.DataPoints[0].Value)

	store.Unbind(bound)

	rm = metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(ctx, &rm))
	active = findSum(t, rm, "gateway.usercontext.active")
	require.Len(t, active.DataPoints, 1)
	assert.Equal(t, int64(0), active.DataPoints[0].Value)
}

func findSum(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.Truef(t, ok, "%s is %T, want Sum[int64]", name, m.Data)
			return sum
		}
	}
	t.Fatalf("metric %q not collected", name)
	return metricdata.Sum[int64]{}
}
