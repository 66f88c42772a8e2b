package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sony/gobreaker/v2"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/domain"
)

// translateTransportError maps a failure to reach the upstream to a domain
// error. The original error stays in the chain for logging.
func translateTransportError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("circuit breaker rejected call: %w: %w", domain.ErrUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}
}
