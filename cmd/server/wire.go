package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/do/v2"
	"google.golang.org/grpc"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/clients/upstream"
	adaptgrpc "github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/grpc"
	adapthttp "github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/http"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/app"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/config"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/health"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/httpclient"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/telemetry"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/ports"
)

const (
	healthCheckTimeout = 2 * time.Second

	upstreamName     = "upstream"
	upstreamGRPCName = "upstream-grpc"
)

// provide registers every lazily built component. cfg, logger and metrics
// must already be in the container.
func provide(i do.Injector) {
	// platform
	do.Provide(i, func(i do.Injector) (*usercontext.Store, error) {
		return usercontext.NewStore(usercontext.WithMetrics(do.MustInvoke[*telemetry.Metrics](i))), nil
	})
	do.Provide(i, func(do.Injector) (ports.HealthRegistry, error) {
		return health.New(health.WithCheckTimeout(healthCheckTimeout)), nil
	})

	// outbound
	do.Provide(i, func(i do.Injector) (*upstream.Requester, error) {
		cfg := do.MustInvoke[*config.Config](i)
		logger := do.MustInvoke[*slog.Logger](i)
		client := httpclient.New(&cfg.Client, upstreamName, do.MustInvoke[*telemetry.Metrics](i), logger)
		return upstream.NewRequester(client, cfg.Gateway.MaxBodyBytes, logger), nil
	})
	do.Provide(i, func(i do.Injector) (*grpc.ClientConn, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return adaptgrpc.Dial(cfg.Client.GRPCTarget, upstreamGRPCName,
			do.MustInvoke[*telemetry.Metrics](i), do.MustInvoke[*slog.Logger](i))
	})

	// application
	do.Provide(i, func(i do.Injector) (ports.GatewayService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return app.NewGatewayService(do.MustInvoke[*upstream.Requester](i), cfg.Gateway, do.MustInvoke[*slog.Logger](i)), nil
	})

	// inbound
	do.Provide(i, func(i do.Injector) (http.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		gateway := handlers.NewGatewayHandler(do.MustInvoke[ports.GatewayService](i), cfg.Gateway.MaxBodyBytes)
		probes := handlers.NewHealthHandler(do.MustInvoke[ports.HealthRegistry](i))
		stack := middleware.Standard(
			do.MustInvoke[*usercontext.Store](i),
			do.MustInvoke[*telemetry.Metrics](i),
			do.MustInvoke[*slog.Logger](i),
			cfg.Server.WriteTimeout,
		)
		return adapthttp.NewRouter(gateway, probes, stack), nil
	})
	do.Provide(i, func(i do.Injector) (*adapthttp.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return adapthttp.NewServer(cfg.Server, do.MustInvoke[http.Handler](i), do.MustInvoke[*slog.Logger](i)), nil
	})
	do.Provide(i, func(i do.Injector) (*adaptgrpc.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return adaptgrpc.NewServer(cfg.GRPC, do.MustInvoke[*usercontext.Store](i), do.MustInvoke[*slog.Logger](i)), nil
	})
}

// registerHealthChecks adds the upstream checks to the readiness registry.
// It returns the upstream gRPC connection when one is configured so the
// caller can close it.
func registerHealthChecks(i do.Injector) (*grpc.ClientConn, error) {
	registry := do.MustInvoke[ports.HealthRegistry](i)
	registry.Register(do.MustInvoke[*upstream.Requester](i))

	if do.MustInvoke[*config.Config](i).Client.GRPCTarget == "" {
		return nil, nil
	}
	conn, err := do.Invoke[*grpc.ClientConn](i)
	if err != nil {
		return nil, fmt.Errorf("wiring upstream grpc client: %w", err)
	}
	registry.Register(adaptgrpc.NewHealthChecker(upstreamGRPCName, conn, ""))
	return conn, nil
}
