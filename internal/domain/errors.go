package domain

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

// Failure classes shared by the gateway's layers. Adapters wrap their own
// errors with one of these and the HTTP layer maps each to a status.
var (
	ErrNotFound         = errors.New("not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrValidation       = errors.New("validation error")
	ErrUnavailable      = errors.New("upstream unavailable")
	ErrTimeout          = errors.New("upstream timeout")
	ErrTooLarge         = errors.New("payload too large")
)

// ValidationError names each rejected request field. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrValidation.Error())
	for i, field := range slices.Sorted(maps.Keys(e.Fields)) {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(field + ": " + e.Fields[field])
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
