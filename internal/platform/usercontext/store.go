// Package usercontext carries caller metadata (correlation id, auth token,
// user id, org id) from an inbound request to every outbound call made while
// serving it.
//
// The metadata for one request lives in a *Metadata bound into that
// request's context.Context. Goroutines spawned for the request see the same
// binding because they receive the same context; nothing is keyed by
// goroutine identity.
//
// Lifecycle:
//
//	ctx, md := store.Capture(r.Context(), propagation.HeaderCarrier(r.Header))
//	defer store.Unbind(ctx)
//
//	// anywhere below, including other goroutines:
//	md, err := usercontext.Current(ctx)
//	n, err := usercontext.Inject(ctx, propagation.HeaderCarrier(out.Header))
//
// After Unbind the binding is released: reads report absence and
// Current returns ErrNoContextBound. A released Metadata is never reused.
package usercontext

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/telemetry"
)

// ErrNoContextBound is returned when metadata is requested from a context
// that has no binding, or whose binding has already been released.
var ErrNoContextBound = errors.New("usercontext: no request context bound")

// bindingKey is the context key for the current request's binding.
type bindingKey struct{}

type binding struct {
	md    *Metadata
	owner *Store
}

// Store creates and releases request bindings and tracks how many are live.
// A Store is safe for concurrent use; bindings created by it are independent.
type Store struct {
	active  atomic.Int64
	metrics *telemetry.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithMetrics records capture counts and live bindings. Nil disables metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// NewStore creates a Store.
func NewStore(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind associates a new, empty Metadata with the returned context. A binding
// already present in ctx is shadowed for the returned context only.
func (s *Store) Bind(ctx context.Context) (context.Context, *Metadata) {
	if ctx == nil {
		ctx = context.Background()
	}
	md := &Metadata{}
	s.active.Add(1)
	if s.metrics != nil {
		s.metrics.UserContextActive.Add(ctx, 1)
	}
	return context.WithValue(ctx, bindingKey{}, &binding{md: md, owner: s}), md
}

// Unbind releases the binding carried by ctx. It is idempotent and a no-op
// when ctx carries no binding.
func (s *Store) Unbind(ctx context.Context) {
	if ctx == nil {
		return
	}
	b, ok := ctx.Value(bindingKey{}).(*binding)
	if !ok {
		return
	}
	if !b.md.release() {
		return
	}
	// The binding is counted against the Store that created it.
	owner := b.owner
	owner.active.Add(-1)
	if owner.metrics != nil {
		owner.metrics.UserContextActive.Add(context.WithoutCancel(ctx), -1)
	}
}

// Scope binds a fresh Metadata, runs fn with the bound context, and unbinds
// on every exit path, including panics.
func (s *Store) Scope(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, _ = s.Bind(ctx)
	defer s.Unbind(ctx)
	return fn(ctx)
}

// Active returns the number of bindings created by this Store that have not
// been unbound.
func (s *Store) Active() int64 {
	return s.active.Load()
}

// Current returns the Metadata bound to ctx.
func Current(ctx context.Context) (*Metadata, error) {
	if ctx == nil {
		return nil, ErrNoContextBound
	}
	b, ok := ctx.Value(bindingKey{}).(*binding)
	if !ok || b.md.isReleased() {
		return nil, ErrNoContextBound
	}
	return b.md, nil
}

// Lookup returns one field of the metadata bound to ctx. It reports false
// when the field is absent or nothing is bound.
func Lookup(ctx context.Context, f Field) (string, bool) {
	md, err := Current(ctx)
	if err != nil {
		return "", false
	}
	return md.Get(f)
}

// Set writes one field of the metadata bound to ctx.
func Set(ctx context.Context, f Field, v string) error {
	md, err := Current(ctx)
	if err != nil {
		return err
	}
	md.Set(f, v)
	return nil
}

// ValuesFromContext returns a snapshot of the metadata bound to ctx, or the
// zero Values when nothing is bound.
func ValuesFromContext(ctx context.Context) Values {
	md, err := Current(ctx)
	if err != nil {
		return Values{}
	}
	return md.Snapshot()
}
