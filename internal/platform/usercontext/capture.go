package usercontext

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/telemetry"
)

// Capture binds a fresh Metadata to ctx and fills it from the inbound
// carrier. Keys are matched case-insensitively, preferring the exact
// lowercase key when several casings are present; a key missing from the
// carrier leaves its field absent. Capture never fails.
//
// The caller owns the returned context and must Unbind it when the request
// finishes.
func (s *Store) Capture(ctx context.Context, carrier propagation.TextMapCarrier) (context.Context, *Metadata) {
	ctx, md := s.Bind(ctx)
	if carrier == nil {
		s.recordCapture(ctx, 0)
		return ctx, md
	}

	keys := carrier.Keys()
	present := 0
	for _, f := range Fields() {
		v, ok := lookup(carrier, keys, f.Header())
		if !ok {
			continue
		}
		md.Set(f, v)
		present++
	}

	s.recordCapture(ctx, present)
	return ctx, md
}

func (s *Store) recordCapture(ctx context.Context, present int) {
	if s.metrics == nil {
		return
	}
	s.metrics.UserContextCaptures.Add(ctx, 1,
		metric.WithAttributes(telemetry.AttrFieldsPresent.Int(present)))
}

// lookup finds key among keys ignoring case. When the carrier holds several
// casings, the exact well-known (lowercase) key wins; otherwise the variant
// that sorts first is used, so the choice never depends on map order.
func lookup(carrier propagation.TextMapCarrier, keys []string, key string) (string, bool) {
	match := ""
	for _, k := range keys {
		if k == key {
			return carrier.Get(k), true
		}
		if strings.EqualFold(k, key) && (match == "" || k < match) {
			match = k
		}
	}
	if match == "" {
		return "", false
	}
	return carrier.Get(match), true
}
