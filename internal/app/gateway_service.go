// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port interfaces.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/app/fanout"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/domain"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/config"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/ports"
)

// Compile-time check that GatewayService implements ports.GatewayService.
var _ ports.GatewayService = (*GatewayService)(nil)

// GatewayService implements ports.GatewayService on top of the Upstream port.
// It validates requests and coordinates concurrent upstream calls; the
// request metadata travels in ctx and is injected by the upstream adapter.
type GatewayService struct {
	upstream ports.Upstream
	limits   config.GatewayConfig
	logger   *slog.Logger
}

// NewGatewayService creates a GatewayService. A nil logger discards output.
func NewGatewayService(upstream ports.Upstream, limits config.GatewayConfig, logger *slog.Logger) *GatewayService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GatewayService{
		upstream: upstream,
		limits:   limits,
		logger:   logger,
	}
}

// Forward validates req and relays it to the upstream.
func (s *GatewayService) Forward(ctx context.Context, req *domain.ProxyRequest) (*domain.ProxyResponse, error) {
	if err := req.Validate(); err != nil {
		s.logger.WarnContext(ctx, "rejected proxy request",
			slog.String("operation", "Forward"),
			slog.String("method", req.Method),
			slog.String("path", req.Path),
			slog.Any("error", err),
		)
		return nil, err
	}

	resp, err := s.upstream.Forward(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to forward request",
			slog.String("operation", "Forward"),
			slog.String("method", req.Method),
			slog.String("path", req.Path),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.DebugContext(ctx, "forwarded request",
		slog.String("method", req.Method),
		slog.String("path", req.Path),
		slog.Int("status", resp.StatusCode),
	)
	return resp, nil
}

// Aggregate fetches every path concurrently, bounded by the configured
// fan-out, and returns the parts in request order.
func (s *GatewayService) Aggregate(ctx context.Context, paths []string) (*domain.AggregateResult, error) {
	if err := s.validatePaths(paths); err != nil {
		s.logger.WarnContext(ctx, "rejected aggregate request",
			slog.String("operation", "Aggregate"),
			slog.Int("paths", len(paths)),
			slog.Any("error", err),
		)
		return nil, err
	}

	results := fanout.Run(ctx, s.limits.MaxFanout, paths,
		func(ctx context.Context, path string) (*domain.ProxyResponse, error) {
			return s.upstream.Forward(ctx, &domain.ProxyRequest{
				Method: http.MethodGet,
				Path:   path,
				Header: http.Header{"Accept": {"application/json"}},
			})
		},
	)

	out := &domain.AggregateResult{Parts: make([]domain.AggregatePart, len(paths))}
	for i, r := range results {
		part := domain.AggregatePart{Path: paths[i], Err: r.Err}
		if r.Err == nil {
			part.StatusCode = r.Value.StatusCode
			part.Body = r.Value.Body
		}
		out.Parts[i] = part
	}

	if failed := out.Failed(); failed > 0 {
		s.logger.WarnContext(ctx, "aggregate completed with failures",
			slog.String("operation", "Aggregate"),
			slog.Int("paths", len(paths)),
			slog.Int("failed", failed),
		)
	}
	return out, nil
}

// Describe returns a snapshot of the request metadata bound to ctx.
func (s *GatewayService) Describe(ctx context.Context) (usercontext.Values, error) {
	md, err := usercontext.Current(ctx)
	if err != nil {
		return usercontext.Values{}, err
	}
	return md.Snapshot(), nil
}

func (s *GatewayService) validatePaths(paths []string) error {
	switch {
	case len(paths) == 0:
		return &domain.ValidationError{Fields: map[string]string{"path": "at least one is required"}}
	case s.limits.MaxAggregatePaths > 0 && len(paths) > s.limits.MaxAggregatePaths:
		return &domain.ValidationError{Fields: map[string]string{
			"path": fmt.Sprintf("at most %d allowed, got %d", s.limits.MaxAggregatePaths, len(paths)),
		}}
	}
	for i, p := range paths {
		if err := domain.ValidatePath(p); err != nil {
			return fmt.Errorf("path[%d]: %w", i, err)
		}
	}
	return nil
}
