package dto

import (
	"net/url"
	"strings"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/domain"
)

const msgRequired = "is required"

// AggregateRequest is the JSON body accepted by POST /api/v1/aggregate.
type AggregateRequest struct {
	Paths []string `json:"paths"`
}

// Validate checks that at least one non-blank path was given. Per-path
// rules and limits are enforced by the gateway service.
// Returns a *domain.ValidationError if any checks fail.
func (r *AggregateRequest) Validate() error {
	if len(r.Paths) == 0 {
		return &domain.ValidationError{Fields: map[string]string{"paths": msgRequired}}
	}
	for _, p := range r.Paths {
		if strings.TrimSpace(p) == "" {
			return &domain.ValidationError{Fields: map[string]string{"paths": "must not contain blank entries"}}
		}
	}
	return nil
}

// AggregatePathsFromQuery collects the repeated path parameter of
// GET /api/v1/aggregate?path=/a&path=/b. Comma-separated values are split.
func AggregatePathsFromQuery(q url.Values) []string {
	var paths []string
	for _, raw := range q["path"] {
		for p := range strings.SplitSeq(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
	}
	return paths
}
