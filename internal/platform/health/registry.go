// Package health keeps the readiness checks for the gateway's upstreams.
package health

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/ports"
)

var _ ports.HealthRegistry = (*Registry)(nil)

// Registry runs every registered checker in parallel on each readiness probe.
type Registry struct {
	mu       sync.RWMutex
	checkers []ports.HealthChecker
	timeout  time.Duration
}

// Option configures a Registry.
type Option func(*Registry)

// WithCheckTimeout bounds each check by d. With no timeout a check is
// bounded only by the probe's context.
func WithCheckTimeout(d time.Duration) Option {
	return func(r *Registry) { r.timeout = d }
}

// New returns an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds c. It may be called while probes are running.
func (r *Registry) Register(c ports.HealthChecker) {
	r.mu.Lock()
	r.checkers = append(r.checkers, c)
	r.mu.Unlock()
}

// CheckAll returns one entry per checker name, nil meaning healthy. Checkers
// sharing a name collapse to the one registered last. Checks run under
// contexts derived from ctx, so an upstream check that calls out carries the
// probe's request metadata.
func (r *Registry) CheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	checkers := slices.Clone(r.checkers)
	r.mu.RUnlock()

	type outcome struct {
		name string
		err  error
	}
	outcomes := make([]outcome, len(checkers))

	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Go(func() {
			outcomes[i] = outcome{name: c.Name(), err: r.run(ctx, c)}
		})
	}
	wg.Wait()

	results := make(map[string]error, len(outcomes))
	for _, o := range outcomes {
		results[o.name] = o.err
	}
	return results
}

func (r *Registry) run(ctx context.Context, c ports.HealthChecker) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return c.HealthCheck(ctx)
}
