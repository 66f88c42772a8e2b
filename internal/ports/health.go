package ports

import "context"

// HealthChecker reports whether one dependency of the gateway is usable.
// Implementations include the upstream HTTP requester, whose state comes
// from its circuit breaker, and the upstream gRPC health client.
type HealthChecker interface {
	// Name labels the check in readiness output, e.g. "upstream".
	Name() string
	// HealthCheck returns nil when healthy. It must honor ctx.
	HealthCheck(ctx context.Context) error
}

// HealthRegistry runs the registered checks for the readiness endpoint.
type HealthRegistry interface {
	Register(checker HealthChecker)
	// CheckAll returns one entry per checker name; nil means healthy.
	CheckAll(ctx context.Context) map[string]error
}
