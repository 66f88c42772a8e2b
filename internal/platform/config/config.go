// Package config loads the gateway's settings with koanf. Layers apply in
// order (built-in defaults, configs/base.yaml, configs/{profile}.yaml, then
// APP_* environment variables) and the result is validated before use.
package config

import "time"

// Config is the full gateway configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	GRPC      GRPCConfig      `koanf:"grpc"`
	Log       LogConfig       `koanf:"log"`
	Client    ClientConfig    `koanf:"client"`
	Gateway   GatewayConfig   `koanf:"gateway"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig is the inbound HTTP listener. WriteTimeout also bounds each
// request through the Timeout middleware.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// GRPCConfig is the optional inbound gRPC listener, whose interceptors
// capture the same tmx-* metadata as the HTTP side.
type GRPCConfig struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`
}

// LogConfig selects the slog level (debug, info, warn, error) and handler
// (json, text).
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ClientConfig describes the upstream every proxied and aggregated call
// goes to.
type ClientConfig struct {
	BaseURL string `koanf:"base_url"`
	// GRPCTarget is the upstream gRPC address used for readiness checks.
	// Empty disables the gRPC upstream.
	GRPCTarget     string               `koanf:"grpc_target"`
	Timeout        time.Duration        `koanf:"timeout"`
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
	RateLimit      RateLimitConfig      `koanf:"rate_limit"`
}

// RetryConfig is the exponential backoff for idempotent upstream calls.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"`
	InitialInterval time.Duration `koanf:"initial_interval"`
	MaxInterval     time.Duration `koanf:"max_interval"`
	Multiplier      float64       `koanf:"multiplier"`
}

// CircuitBreakerConfig trips after MaxFailures consecutive failures and
// probes again after Timeout.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"`
	Timeout       time.Duration `koanf:"timeout"`
	HalfOpenLimit int           `koanf:"half_open_limit"`
}

// RateLimitConfig throttles outbound calls. Zero RequestsPerSecond turns
// the limiter off.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	BurstSize         int     `koanf:"burst_size"`
}

// GatewayConfig bounds the work one inbound request can cause.
type GatewayConfig struct {
	// MaxFanout bounds concurrent upstream calls per aggregate request.
	MaxFanout int `koanf:"max_fanout"`
	// MaxAggregatePaths bounds the number of paths in one aggregate request.
	MaxAggregatePaths int `koanf:"max_aggregate_paths"`
	// MaxBodyBytes bounds proxied request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// TelemetryConfig selects the OpenTelemetry exporter (stdout or otlp).
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Exporter    string `koanf:"exporter"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}
