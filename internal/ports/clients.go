package ports

import (
	"context"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/domain"
)

// Upstream defines the client port for the backend behind the gateway.
// Implemented by the upstream adapter; called by the application layer.
// Implementations inject the request metadata bound to ctx into every call.
type Upstream interface {
	// Forward sends req to the upstream. Any upstream status, including 4xx
	// and 5xx, is returned as a response, not an error. Transport failures
	// map to domain.ErrUnavailable or domain.ErrTimeout.
	Forward(ctx context.Context, req *domain.ProxyRequest) (*domain.ProxyResponse, error)
}
