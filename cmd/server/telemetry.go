package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/config"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/telemetry"
)

// providers holds the OpenTelemetry SDK providers. Every field is nil when
// telemetry is disabled, and a nil *telemetry.Metrics turns recording off
// throughout the gateway.
type providers struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

func startTelemetry(ctx context.Context, cfg config.TelemetryConfig) (*providers, error) {
	p := &providers{}
	if !cfg.Enabled {
		return p, nil
	}

	var err error
	if p.tracer, err = telemetry.InitTracer(ctx, cfg.ServiceName, cfg.Exporter, cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("tracer: %w", err)
	}
	if p.meter, err = telemetry.InitMeter(ctx, cfg.ServiceName, cfg.Exporter, cfg.Endpoint); err != nil {
		_ = p.shutdown(ctx)
		return nil, fmt.Errorf("meter: %w", err)
	}
	if p.metrics, err = telemetry.NewMetrics(p.meter, cfg.ServiceName); err != nil {
		_ = p.shutdown(ctx)
		return nil, fmt.Errorf("instruments: %w", err)
	}
	return p, nil
}

func (p *providers) shutdown(ctx context.Context) error {
	var errs []error
	if p.tracer != nil {
		errs = append(errs, p.tracer.Shutdown(ctx))
	}
	if p.meter != nil {
		errs = append(errs, p.meter.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// flushTelemetry exports whatever is still buffered before the process exits.
func flushTelemetry(p *providers, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := p.shutdown(ctx); err != nil {
		logger.Error("flushing telemetry", slog.Any("error", err))
	}
}
