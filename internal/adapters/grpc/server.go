package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/config"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
)

// Server wraps a gRPC server with request metadata capture, the standard
// health service, and graceful shutdown.
type Server struct {
	srv    *gogrpc.Server
	health *health.Server
	addr   string
	logger *slog.Logger
}

var _ gogrpc.ServiceRegistrar = (*Server)(nil)

// NewServer creates a gRPC server with the health and reflection services
// registered. The capture interceptors run outermost; interceptors passed in
// opts run inside them and see the bound metadata.
func NewServer(cfg config.GRPCConfig, store *usercontext.Store, logger *slog.Logger, opts ...gogrpc.ServerOption) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	base := []gogrpc.ServerOption{
		gogrpc.StatsHandler(otelgrpc.NewServerHandler()),
		gogrpc.ChainUnaryInterceptor(UnaryServerInterceptor(store)),
		gogrpc.ChainStreamInterceptor(StreamServerInterceptor(store)),
	}
	srv := gogrpc.NewServer(append(base, opts...)...)

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &Server{
		srv:    srv,
		health: hs,
		addr:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		logger: logger,
	}
}

// RegisterService registers an application service. Call before Start.
func (s *Server) RegisterService(desc *gogrpc.ServiceDesc, impl any) {
	s.srv.RegisterService(desc, impl)
}

// Start listens on the configured address and serves until Shutdown.
// Returns nil on graceful shutdown.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("grpc listen %s: %w", s.addr, err)
	}
	return s.Serve(lis)
}

// Serve serves on lis until Shutdown.
func (s *Server) Serve(lis net.Listener) error {
	s.health.Resume()
	s.logger.Info("grpc server starting", slog.String("addr", lis.Addr().String()))
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, gogrpc.ErrServerStopped) {
		return fmt.Errorf("grpc server error: %w", err)
	}
	return nil
}

// Shutdown marks the health service NOT_SERVING and drains in-flight calls.
// If ctx ends first, remaining calls are cancelled.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("grpc server shutting down")
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.srv.Stop()
		<-done
		return fmt.Errorf("grpc graceful stop: %w", ctx.Err())
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}
