package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/http/dto"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/domain"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/logging"
)

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).WarnContext(r.Context(), "writing response body",
			slog.Int("status", code),
			slog.Any("error", err),
		)
	}
}

// validatable is implemented by request DTOs that check their own fields.
type validatable interface {
	Validate() error
}

// readRequest decodes at most limit bytes of JSON into dst and validates it.
// Any failure is written to w as a problem response and reported as false.
func readRequest[T validatable](w http.ResponseWriter, r *http.Request, limit int64, dst T) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	err := dec.Decode(dst)
	switch {
	case tooLarge(err):
		dto.WriteErrorResponse(w, r, domain.ErrTooLarge)
		return false
	case err != nil:
		dto.WriteErrorResponse(w, r, &domain.ValidationError{
			Fields: map[string]string{"body": "invalid JSON"},
		})
		return false
	}

	if err := dst.Validate(); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return false
	}
	return true
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
