package grpc

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/telemetry"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
)

// UnaryServerInterceptor captures the tmx-* keys of the incoming metadata
// into a fresh binding and releases it when the handler returns.
func UnaryServerInterceptor(store *usercontext.Store) gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		ctx = capture(ctx, store)
		defer store.Unbind(ctx)
		return handler(ctx, req)
	}
}

// StreamServerInterceptor is the streaming counterpart of UnaryServerInterceptor.
// The binding lives until the stream handler returns.
func StreamServerInterceptor(store *usercontext.Store) gogrpc.StreamServerInterceptor {
	return func(srv any, ss gogrpc.ServerStream, _ *gogrpc.StreamServerInfo, handler gogrpc.StreamHandler) error {
		ctx := capture(ss.Context(), store)
		defer store.Unbind(ctx)
		return handler(srv, &boundStream{ServerStream: ss, ctx: ctx})
	}
}

func capture(ctx context.Context, store *usercontext.Store) context.Context {
	md, _ := metadata.FromIncomingContext(ctx)
	ctx, _ = store.Capture(ctx, MetadataCarrier(md))
	return ctx
}

// boundStream overrides the stream context with the one carrying the binding.
type boundStream struct {
	gogrpc.ServerStream
	ctx context.Context
}

func (s *boundStream) Context() context.Context {
	return s.ctx
}

// clientInjector writes the bound request metadata into outgoing gRPC
// metadata. Caller-set tmx-* keys are replaced.
type clientInjector struct {
	peer    string
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// UnaryClientInterceptor injects the request metadata bound to the call's
// context into the outgoing metadata. peer names the target in metrics.
// Calls made outside a bound request go out without tmx-* keys.
func UnaryClientInterceptor(peer string, metrics *telemetry.Metrics, logger *slog.Logger) gogrpc.UnaryClientInterceptor {
	inj := newClientInjector(peer, metrics, logger)
	return func(ctx context.Context, method string, req, reply any, cc *gogrpc.ClientConn, invoker gogrpc.UnaryInvoker, opts ...gogrpc.CallOption) error {
		return invoker(inj.inject(ctx), method, req, reply, cc, opts...)
	}
}

// StreamClientInterceptor is the streaming counterpart of UnaryClientInterceptor.
func StreamClientInterceptor(peer string, metrics *telemetry.Metrics, logger *slog.Logger) gogrpc.StreamClientInterceptor {
	inj := newClientInjector(peer, metrics, logger)
	return func(ctx context.Context, desc *gogrpc.StreamDesc, cc *gogrpc.ClientConn, method string, streamer gogrpc.Streamer, opts ...gogrpc.CallOption) (gogrpc.ClientStream, error) {
		return streamer(inj.inject(ctx), desc, cc, method, opts...)
	}
}

func newClientInjector(peer string, metrics *telemetry.Metrics, logger *slog.Logger) *clientInjector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &clientInjector{peer: peer, metrics: metrics, logger: logger}
}

func (c *clientInjector) inject(ctx context.Context) context.Context {
	out, ok := metadata.FromOutgoingContext(ctx)
	if ok {
		out = out.Copy()
	} else {
		out = metadata.MD{}
	}
	for _, f := range usercontext.Fields() {
		delete(out, f.Header())
	}

	n, err := usercontext.Inject(ctx, MetadataCarrier(out))
	if err != nil {
		c.logger.DebugContext(ctx, "outbound call without request metadata",
			slog.String("peer.service", c.peer),
			slog.Any("error", err),
		)
	}
	if n > 0 && c.metrics != nil {
		c.metrics.UserContextInjections.Add(ctx, 1, metric.WithAttributes(
			telemetry.AttrCarrier.String("grpc"),
			telemetry.AttrPeerService.String(c.peer),
		))
	}
	return metadata.NewOutgoingContext(ctx, out)
}
