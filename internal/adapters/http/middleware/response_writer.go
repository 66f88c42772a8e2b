// Package middleware holds the gateway's inbound HTTP middleware:
//
//	Recovery → RequestID → UserContext → OpenTelemetry → Logging → Timeout → Handler
//
// Standard assembles that order; Chain composes arbitrary stacks.
package middleware

import "net/http"

// responseWriter remembers what a handler sent so the outer middleware can
// log, trace and decide whether a panic can still be turned into a 500.
type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader forwards only the first status; net/http would log later ones
// as superfluous.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status, rw.wroteHeader = code, true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(p []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(p)
	rw.bytes += int64(n)
	return n, err
}

// Flush pushes proxied bytes out as they arrive, when the writer underneath
// supports it.
func (rw *responseWriter) Flush() {
	rw.wroteHeader = true
	_ = http.NewResponseController(rw.ResponseWriter).Flush()
}

func (rw *responseWriter) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

var _ http.Flusher = (*responseWriter)(nil)
