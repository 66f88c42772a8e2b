package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
	exporters  = []string{"stdout", "otlp"}
)

// problems accumulates validation failures for one section.
type problems []error

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Errorf(format, args...))
}

func (p problems) err() error { return errors.Join(p...) }

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.GRPC.validate(c.Server.Port),
		c.Log.validate(),
		c.Client.validate(),
		c.Gateway.validate(),
		c.Telemetry.validate(),
	)
}

func validPort(p int) bool { return p >= 1 && p <= 65535 }

func (s *ServerConfig) validate() error {
	var p problems
	if !validPort(s.Port) {
		p.addf("server.port must be between 1 and 65535, got %d", s.Port)
	}
	if s.ReadTimeout <= 0 {
		p.addf("server.read_timeout must be positive")
	}
	if s.WriteTimeout <= 0 {
		p.addf("server.write_timeout must be positive")
	}
	return p.err()
}

func (g *GRPCConfig) validate(httpPort int) error {
	if !g.Enabled {
		return nil
	}
	var p problems
	if !validPort(g.Port) {
		p.addf("grpc.port must be between 1 and 65535, got %d", g.Port)
	}
	if g.Port == httpPort {
		p.addf("grpc.port must differ from server.port, both are %d", g.Port)
	}
	return p.err()
}

func (l *LogConfig) validate() error {
	var p problems
	if !slices.Contains(logLevels, l.Level) {
		p.addf("log.level must be one of %v, got %q", logLevels, l.Level)
	}
	if !slices.Contains(logFormats, l.Format) {
		p.addf("log.format must be one of %v, got %q", logFormats, l.Format)
	}
	return p.err()
}

// validate requires an absolute http(s) base URL because relayed paths are
// appended to it verbatim.
func (cl *ClientConfig) validate() error {
	var p problems
	if u, err := url.Parse(cl.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		p.addf("client.base_url must be an absolute http(s) URL, got %q", cl.BaseURL)
	}
	if cl.Timeout <= 0 {
		p.addf("client.timeout must be positive")
	}
	if cl.Retry.MaxAttempts < 1 {
		p.addf("client.retry.max_attempts must be >= 1, got %d", cl.Retry.MaxAttempts)
	}
	if cl.Retry.Multiplier <= 0 {
		p.addf("client.retry.multiplier must be positive, got %g", cl.Retry.Multiplier)
	}
	if cl.CircuitBreaker.MaxFailures < 1 {
		p.addf("client.circuit_breaker.max_failures must be >= 1, got %d", cl.CircuitBreaker.MaxFailures)
	}
	switch rl := cl.RateLimit; {
	case rl.RequestsPerSecond < 0:
		p.addf("client.rate_limit.requests_per_second must be >= 0, got %g", rl.RequestsPerSecond)
	case rl.RequestsPerSecond > 0 && rl.BurstSize < 1:
		p.addf("client.rate_limit.burst_size must be >= 1 when rate limiting is enabled, got %d", rl.BurstSize)
	}
	return p.err()
}

func (g *GatewayConfig) validate() error {
	var p problems
	if g.MaxFanout < 1 {
		p.addf("gateway.max_fanout must be >= 1, got %d", g.MaxFanout)
	}
	if g.MaxAggregatePaths < 1 {
		p.addf("gateway.max_aggregate_paths must be >= 1, got %d", g.MaxAggregatePaths)
	}
	if g.MaxBodyBytes < 1 {
		p.addf("gateway.max_body_bytes must be >= 1, got %d", g.MaxBodyBytes)
	}
	return p.err()
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}
	var p problems
	if !slices.Contains(exporters, t.Exporter) {
		p.addf("telemetry.exporter must be one of %v, got %q", exporters, t.Exporter)
	}
	if t.Exporter == "otlp" && t.Endpoint == "" {
		p.addf("telemetry.endpoint must not be empty when exporter is otlp")
	}
	return p.err()
}
