// Package httpclient is the gateway's outbound HTTP path. Every call made
// through a Client carries the tmx-* request metadata bound to its context,
// so upstream services see the same correlation id, auth token, user and org
// as the inbound request that triggered the call.
//
// A call passes through these stages:
//
//	breaker → rate limit → metadata injection → client span → retry loop
//
// Usage:
//
//	client := httpclient.New(&cfg.Client, "upstream", metrics, logger)
//	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
//	resp, err := client.Do(ctx, req)
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/config"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/telemetry"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
)

const tracerName = "github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/httpclient"

type requestIDKey struct{}

// WithRequestID stores the hop-local X-Request-ID for outbound calls. It is
// independent of tmx-correlation-id, which spans the whole call graph.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

type retryConfig struct {
	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration
	multiplier      float64
}

// Client sends requests to one upstream service and is shared by every
// in-flight request.
type Client struct {
	hc       *http.Client
	baseURL  string
	name     string
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	limiter  *rate.Limiter // nil disables rate limiting
	retryCfg retryConfig
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

// New builds a Client from cfg. name labels spans, metrics and the breaker.
// metrics may be nil.
func New(cfg *config.ClientConfig, name string, metrics *telemetry.Metrics, logger *slog.Logger) *Client {
	c := &Client{
		hc:      &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		name:    name,
		retryCfg: retryConfig{
			maxAttempts:     cfg.Retry.MaxAttempts,
			initialInterval: cfg.Retry.InitialInterval,
			maxInterval:     cfg.Retry.MaxInterval,
			multiplier:      cfg.Retry.Multiplier,
		},
		metrics: metrics,
		logger:  logger,
	}
	if rl := cfg.RateLimit; rl.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), rl.BurstSize)
	}

	maxFailures := cfg.CircuitBreaker.MaxFailures
	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: clampUint32(cfg.CircuitBreaker.HalfOpenLimit),
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= maxFailures
		},
		OnStateChange: c.logBreakerState,
	})
	return c
}

// Do sends req with the metadata bound to ctx injected as tmx-* headers.
//
// A non-nil response is always the upstream's last answer and the caller
// closes its body. err is additionally non-nil when retries ran out on a
// retryable status. A nil response means the breaker rejected the call, the
// rate-limit wait was aborted, or the transport failed.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()

	var last *http.Response
	_, err := c.breaker.Execute(func() (*http.Response, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		c.injectHeaders(ctx, req)

		spanCtx, span := c.startSpan(ctx, req)
		defer span.End()

		err := c.doWithRetry(spanCtx, req.WithContext(spanCtx), &last)
		endSpan(span, last, err)
		return last, err
	})

	c.record(ctx, req.Method, time.Since(start), last, err)
	return last, err
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Name returns the upstream service name.
func (c *Client) Name() string { return c.name }

// HealthCheck reports the breaker state without calling the upstream. Only a
// closed breaker is healthy.
func (c *Client) HealthCheck(context.Context) error {
	switch st := c.breaker.State(); st {
	case gobreaker.StateClosed:
		return nil
	case gobreaker.StateHalfOpen:
		return fmt.Errorf("%s: degraded, breaker half-open", c.name)
	case gobreaker.StateOpen:
		return fmt.Errorf("%s: failing, breaker open", c.name)
	default:
		return fmt.Errorf("%s: breaker in unknown state %v", c.name, st)
	}
}

func (c *Client) logBreakerState(name string, from, to gobreaker.State) {
	c.logger.Warn("upstream breaker changed state",
		slog.String("peer.service", name),
		slog.String("from", from.String()),
		slog.String("to", to.String()),
	)
}

// injectHeaders writes X-Request-ID and every present tmx-* field onto req.
// Bound values replace anything the caller already set. Calls made outside a
// bound request carry no tmx-* headers.
func (c *Client) injectHeaders(ctx context.Context, req *http.Request) {
	if id, _ := ctx.Value(requestIDKey{}).(string); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	n, err := usercontext.Inject(ctx, propagation.HeaderCarrier(req.Header))
	switch {
	case err != nil:
		c.logger.DebugContext(ctx, "outbound call without request metadata",
			slog.String("peer.service", c.name),
			slog.Any("error", err),
		)
	case n > 0 && c.metrics != nil:
		c.metrics.UserContextInjections.Add(ctx, 1, metric.WithAttributes(
			telemetry.AttrCarrier.String("http"),
			telemetry.AttrPeerService.String(c.name),
		))
	}
}

// startSpan opens a client span, tagged with the correlation id so traces
// can be joined with logs from services that only see tmx-correlation-id,
// and writes the W3C trace headers.
func (c *Client) startSpan(ctx context.Context, req *http.Request) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", req.Method),
		attribute.String("http.url", req.URL.String()),
		attribute.String("peer.service", c.name),
	}
	if id, ok := usercontext.Lookup(ctx, usercontext.CorrelationID); ok {
		attrs = append(attrs, attribute.String("tmx.correlation_id", id))
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "HTTP "+req.Method+" "+c.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return ctx, span
}

func endSpan(span trace.Span, resp *http.Response, err error) {
	if resp != nil {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// record runs outside the breaker so rejected calls are counted as
// circuit_open.
func (c *Client) record(ctx context.Context, method string, elapsed time.Duration, resp *http.Response, err error) {
	if c.metrics == nil {
		return
	}

	code, result := 0, "error"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		result = "circuit_open"
	case resp != nil:
		code = resp.StatusCode
		if code < http.StatusBadRequest {
			result = "success"
		}
	}

	attrs := metric.WithAttributes(
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPStatus.Int(code),
		telemetry.AttrPeerService.String(c.name),
		telemetry.AttrResult.String(result),
	)
	c.metrics.ClientRequestDuration.Record(ctx, elapsed.Seconds(), attrs)
	c.metrics.ClientRequestTotal.Add(ctx, 1, attrs)
}

func clampUint32(v int) uint32 {
	return uint32(min(max(v, 0), math.MaxUint32)) //nolint:gosec // clamped above
}
