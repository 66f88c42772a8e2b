package ports

import (
	"context"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/domain"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
)

// GatewayService defines the service port for gateway operations.
// Implemented by the application layer; called by inbound adapters (handlers).
// Every method expects ctx to carry the request metadata bound by the inbound
// pipeline; outbound calls made on its behalf carry the same metadata.
type GatewayService interface {
	// Forward relays a single request to the upstream and returns its response
	// verbatim. Returns domain.ErrValidation for unforwardable requests and
	// domain.ErrUnavailable or domain.ErrTimeout when the upstream cannot be
	// reached.
	Forward(ctx context.Context, req *domain.ProxyRequest) (*domain.ProxyResponse, error)

	// Aggregate issues concurrent GETs for paths and collects the results in
	// request order. Per-path failures are reported in the result; only
	// request-level problems (no paths, too many, invalid path) are errors.
	Aggregate(ctx context.Context, paths []string) (*domain.AggregateResult, error)

	// Describe returns the request metadata bound to ctx.
	// Returns usercontext.ErrNoContextBound outside a bound request.
	Describe(ctx context.Context) (usercontext.Values, error)
}
