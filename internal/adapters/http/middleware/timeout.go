package middleware

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/http/dto"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/domain"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/logging"
)

// Timeout bounds each request by d. The handler runs on its own goroutine
// against a buffered writer. If it finishes in time the buffer is copied to
// the client; otherwise the client gets a 504 problem response and the
// handler's later writes fail with http.ErrHandlerTimeout.
//
// A panic in the handler is re-raised on the serving goroutine so Recovery
// and UserContext unwind normally. A panic raised after the 504 was sent has
// nowhere to go and is logged with its stack through the request logger. A
// handler still running after the deadline sees whatever binding outer
// middleware left, which is released once UserContext returns.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			buf := &bufferedResponse{header: make(http.Header)}
			done := make(chan any, 1)
			go func() {
				defer func() {
					p := recover()
					if buf.handOff(done, p) {
						return
					}
					if p != nil {
						logging.FromContext(r.Context()).ErrorContext(r.Context(), "panic after request timed out",
							slog.String("panic", fmt.Sprint(p)),
							slog.String("stack", string(debug.Stack())),
							slog.String("method", r.Method),
							slog.String("path", r.URL.Path),
						)
					}
				}()
				next.ServeHTTP(buf, r.WithContext(ctx))
			}()

			select {
			case p := <-done:
				finish(w, buf, p)
			case <-ctx.Done():
				buf.expire()
				// The handler may have handed off just before expire.
				select {
				case p := <-done:
					finish(w, buf, p)
				default:
					dto.WriteErrorResponse(w, r, fmt.Errorf("%w: no response within %s", domain.ErrTimeout, d))
				}
			}
		})
	}
}

func finish(w http.ResponseWriter, buf *bufferedResponse, p any) {
	if p != nil {
		panic(p)
	}
	buf.commit(w)
}

// bufferedResponse holds a handler's response until Timeout decides whether
// it reaches the client.
type bufferedResponse struct {
	mu      sync.Mutex
	header  http.Header
	body    bytes.Buffer
	status  int
	expired bool
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status == 0 {
		b.status = code
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.expired {
		return 0, http.ErrHandlerTimeout
	}
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

// handOff passes the handler's outcome (nil or a panic value) to the serving
// goroutine. It reports false once the buffer has expired, when nobody will
// read done again.
func (b *bufferedResponse) handOff(done chan<- any, p any) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.expired {
		return false
	}
	done <- p
	return true
}

// expire makes every later Write and handOff fail.
func (b *bufferedResponse) expire() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expired = true
}

func (b *bufferedResponse) commit(w http.ResponseWriter) {
	b.mu.Lock()
	defer b.mu.Unlock()

	maps.Copy(w.Header(), b.header)
	if b.status != 0 {
		w.WriteHeader(b.status)
	}
	if b.body.Len() > 0 {
		_, _ = w.Write(b.body.Bytes())
	}
}
