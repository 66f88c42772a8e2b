// Package upstream implements the gateway's outbound HTTP adapter. It turns
// a domain.ProxyRequest into an upstream call through httpclient.Client, so
// every call carries the request metadata bound to the caller's context,
// and relays the upstream's answer back as a domain.ProxyResponse.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/domain"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/httpclient"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/ports"
)

// Compile-time check that Requester implements ports.Upstream.
var _ ports.Upstream = (*Requester)(nil)

// defaultMaxBodyBytes bounds upstream response bodies when no limit is given.
const defaultMaxBodyBytes = 1 << 20 // 1 MB

// Requester centralizes the upstream request lifecycle: request creation,
// header filtering, execution via httpclient.Client, response body cleanup,
// and transport error translation.
type Requester struct {
	client       *httpclient.Client
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewRequester creates a Requester backed by the given HTTP client.
// maxBodyBytes bounds the upstream response body; values < 1 use 1 MB.
func NewRequester(client *httpclient.Client, maxBodyBytes int64, logger *slog.Logger) *Requester {
	if maxBodyBytes < 1 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Requester{client: client, maxBodyBytes: maxBodyBytes, logger: logger}
}

// Forward sends pr to the upstream.
//
// End-to-end headers from pr are copied; hop-by-hop headers and any
// caller-supplied tmx-* headers are dropped, so the only tmx-* values the
// upstream sees are the ones bound to ctx. Upstream statuses, including
// errors, are returned as responses.
func (r *Requester) Forward(ctx context.Context, pr *domain.ProxyRequest) (*domain.ProxyResponse, error) {
	target := r.client.BaseURL() + pr.Path
	if pr.RawQuery != "" {
		target += "?" + pr.RawQuery
	}

	var body io.Reader = http.NoBody
	if len(pr.Body) > 0 {
		body = bytes.NewReader(pr.Body)
	}

	req, err := http.NewRequestWithContext(ctx, pr.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request for %s: %w", pr.Method, pr.Path, err)
	}
	copyEndToEnd(req.Header, pr.Header)
	usercontext.Strip(req.Header)

	resp, err := r.client.Do(ctx, req)
	if err != nil {
		// httpclient.Do returns both resp and err when retries are exhausted
		// on a retryable status. The upstream did answer, so relay it.
		if resp != nil {
			defer r.closeBody(ctx, resp)
			return r.readResponse(resp)
		}
		r.logger.ErrorContext(ctx, "upstream request failed",
			slog.String("operation", "Forward"),
			slog.String("method", pr.Method),
			slog.String("path", pr.Path),
			slog.Any("error", err),
		)
		return nil, translateTransportError(err)
	}
	defer r.closeBody(ctx, resp)

	return r.readResponse(resp)
}

// Name returns the identifier used for health registration and metrics.
func (r *Requester) Name() string {
	return r.client.Name()
}

// HealthCheck reports upstream availability from the client's circuit
// breaker. No network call is made.
func (r *Requester) HealthCheck(ctx context.Context) error {
	return r.client.HealthCheck(ctx)
}

func (r *Requester) readResponse(resp *http.Response) (*domain.ProxyResponse, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upstream response: %w", translateTransportError(err))
	}
	if int64(len(data)) > r.maxBodyBytes {
		return nil, fmt.Errorf("upstream response exceeds %d bytes: %w", r.maxBodyBytes, domain.ErrUnavailable)
	}

	header := make(http.Header, len(resp.Header))
	copyEndToEnd(header, resp.Header)

	return &domain.ProxyResponse{
		StatusCode: resp.StatusCode,
		Header:     header,
		Body:       data,
	}, nil
}

// closeBody closes an HTTP response body and logs on failure.
func (r *Requester) closeBody(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		r.logger.WarnContext(ctx, "failed to close response body",
			slog.String("error", err.Error()),
		)
	}
}
