// Command server runs the tmx edge gateway. It loads the profile named by
// APP_PROFILE, wires the dependency graph with samber/do, serves HTTP (and
// gRPC when enabled) and drains both on SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/do/v2"
	"golang.org/x/sync/errgroup"

	adaptgrpc "github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/grpc"
	adapthttp "github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/http"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/config"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/logging"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
)

const (
	drainTimeout = 15 * time.Second
	flushTimeout = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tmx-edge-gateway: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional and never overrides the real environment.
	_ = godotenv.Load()

	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE is required (local, dev, qa or prod)")
	}
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := startTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("starting telemetry: %w", err)
	}
	defer flushTelemetry(tel, logger)

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, tel.metrics)
	provide(injector)

	conn, err := registerHealthChecks(injector)
	if err != nil {
		return err
	}
	if conn != nil {
		defer func() {
			if err := conn.Close(); err != nil {
				logger.Warn("closing upstream grpc connection", slog.Any("error", err))
			}
		}()
	}
	httpSrv, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("wiring http server: %w", err)
	}
	var grpcSrv *adaptgrpc.Server
	if cfg.GRPC.Enabled {
		if grpcSrv, err = do.Invoke[*adaptgrpc.Server](injector); err != nil {
			return fmt.Errorf("wiring grpc server: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(httpSrv.Start)
	if grpcSrv != nil {
		g.Go(grpcSrv.Start)
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("draining servers", slog.Any("cause", context.Cause(gctx)))

		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		errs := []error{httpSrv.Shutdown(drainCtx)}
		if grpcSrv != nil {
			errs = append(errs, grpcSrv.Shutdown(drainCtx))
		}
		return errors.Join(errs...)
	})

	err = g.Wait()
	logger.Info("gateway stopped",
		slog.Int64("unreleased_bindings", do.MustInvoke[*usercontext.Store](injector).Active()),
	)
	return err
}
