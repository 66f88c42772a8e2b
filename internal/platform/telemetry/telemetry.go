// Package telemetry sets up the gateway's OpenTelemetry providers. Spans and
// metrics go either to stdout, for local runs, or to an OTLP/HTTP collector.
//
//	tp, err := telemetry.InitTracer(ctx, "tmx-edge-gateway", telemetry.ExporterOTLP, "http://collector:4318")
//	mp, err := telemetry.InitMeter(ctx, "tmx-edge-gateway", telemetry.ExporterOTLP, "http://collector:4318")
//	metrics, err := telemetry.NewMetrics(mp, "tmx-edge-gateway")
//
// Both providers are installed globally and must be shut down on exit.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

// Exporter kinds accepted by InitTracer and InitMeter.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

var (
	errUnsupportedExporter = errors.New("unsupported exporter")
	errMissingEndpoint     = errors.New("otlp exporter requires an endpoint")
)

// InitTracer installs a global TracerProvider and the W3C trace-context and
// baggage propagators. The tmx-* headers are not part of the global
// propagator; usercontext carries them separately.
func InitTracer(ctx context.Context, serviceName, exporter, endpoint string) (*sdktrace.TracerProvider, error) {
	var (
		exp sdktrace.SpanExporter
		err error
	)
	switch exporter {
	case ExporterStdout:
		exp, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case ExporterOTLP:
		var c collector
		if c, err = parseCollector(endpoint); err == nil {
			exp, err = otlptracehttp.New(ctx, c.traceOptions()...)
		}
	default:
		err = fmt.Errorf("%w: %q", errUnsupportedExporter, exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("span exporter: %w", err)
	}

	res, err := serviceResource(serviceName)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp, nil
}

// InitMeter installs a global MeterProvider with a periodic reader. Exporter
// kinds match InitTracer.
func InitMeter(ctx context.Context, serviceName, exporter, endpoint string) (*sdkmetric.MeterProvider, error) {
	var (
		exp sdkmetric.Exporter
		err error
	)
	switch exporter {
	case ExporterStdout:
		exp, err = stdoutmetric.New()
	case ExporterOTLP:
		var c collector
		if c, err = parseCollector(endpoint); err == nil {
			exp, err = otlpmetrichttp.New(ctx, c.metricOptions()...)
		}
	default:
		err = fmt.Errorf("%w: %q", errUnsupportedExporter, exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}

	res, err := serviceResource(serviceName)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

func serviceResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, fmt.Errorf("resource for %s: %w", serviceName, err)
	}
	return res, nil
}

// collector is an OTLP/HTTP endpoint such as "http://otel-collector:4318".
// A bare "host:port" is accepted and treated as plaintext.
type collector struct {
	host string
	tls  bool
}

func parseCollector(endpoint string) (collector, error) {
	if endpoint == "" {
		return collector{}, errMissingEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return collector{host: endpoint}, nil
	}
	return collector{host: u.Host, tls: u.Scheme == "https"}, nil
}

func (c collector) traceOptions() []otlptracehttp.Option {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(c.host)}
	if !c.tls {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

func (c collector) metricOptions() []otlpmetrichttp.Option {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(c.host)}
	if !c.tls {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	return opts
}
