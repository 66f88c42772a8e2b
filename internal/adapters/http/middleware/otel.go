package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/telemetry"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
)

const tracerName = "github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/http/middleware"

var attrCorrelationID = attribute.Key("tmx.correlation_id")

// OpenTelemetry wraps each request in a server span that continues the
// caller's W3C trace, and records server metrics unless metrics is nil.
//
// Once chi has matched, the span is renamed after the route pattern, so all
// proxied paths share "GET /api/v1/proxy/*".
func OpenTelemetry(metrics *telemetry.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			attrs := []attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.url", r.URL.String()),
			}
			if id, ok := usercontext.Lookup(ctx, usercontext.CorrelationID); ok {
				attrs = append(attrs, attrCorrelationID.String(id))
			}
			ctx, span := otel.Tracer(tracerName).Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			route := matchedRoute(r)
			finishServerSpan(span, r.Method, route, rw.status)
			recordServer(ctx, metrics, r.Method, route, rw.status, time.Since(start))
		})
	}
}

// matchedRoute is "" when the request never reached a chi router.
func matchedRoute(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}

// finishServerSpan marks only 5xx as errors; a 4xx is the caller's problem.
func finishServerSpan(span trace.Span, method, route string, status int) {
	if route != "" {
		span.SetName(method + " " + route)
		span.SetAttributes(telemetry.AttrHTTPRoute.String(route))
	}
	span.SetAttributes(attribute.Int("http.status_code", status))
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

func recordServer(ctx context.Context, metrics *telemetry.Metrics, method, route string, status int, elapsed time.Duration) {
	if metrics == nil {
		return
	}

	result := "success"
	if status >= http.StatusBadRequest {
		result = "error"
	}
	attrs := metric.WithAttributes(
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPRoute.String(route),
		telemetry.AttrHTTPStatus.Int(status),
		telemetry.AttrResult.String(result),
	)
	metrics.ServerRequestDuration.Record(ctx, elapsed.Seconds(), attrs)
	metrics.ServerRequestTotal.Add(ctx, 1, attrs)
}
