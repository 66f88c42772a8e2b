package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/http/dto"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
)

var errPanic = errors.New("internal server error")

// Recovery turns a handler panic into a 500 problem response. The panic value
// and stack go to the log only. By the time the panic reaches here the
// request's metadata binding has already been released, so the correlation
// id is read from the raw inbound header.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseWriter(w)

			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				attrs := []any{
					slog.String("panic", fmt.Sprint(v)),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				}
				if id := r.Header.Get(usercontext.HeaderCorrelationID); id != "" {
					attrs = append(attrs, slog.String("correlation_id", id))
				}
				logger.ErrorContext(r.Context(), "panic recovered", attrs...)

				if !rw.wroteHeader {
					dto.WriteErrorResponse(rw, r, errPanic)
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
