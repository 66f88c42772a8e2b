// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"encoding/json"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/domain"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
)

// AggregatePartResponse is one upstream result within an aggregate response.
// Body is embedded verbatim when it is valid JSON and as a string otherwise.
type AggregatePartResponse struct {
	Path   string          `json:"path"`
	Status int             `json:"status,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// AggregateResponse represents the outcome of an aggregate request.
type AggregateResponse struct {
	Parts  []AggregatePartResponse `json:"parts"`
	Count  int                     `json:"count"`
	Failed int                     `json:"failed"`
}

// ToAggregateResponse converts a domain AggregateResult to an HTTP response DTO.
func ToAggregateResponse(res *domain.AggregateResult) AggregateResponse {
	parts := make([]AggregatePartResponse, len(res.Parts))
	for i, p := range res.Parts {
		part := AggregatePartResponse{Path: p.Path}
		if p.Err != nil {
			part.Error = p.Err.Error()
		} else {
			part.Status = p.StatusCode
			part.Body = rawBody(p.Body)
		}
		parts[i] = part
	}
	return AggregateResponse{
		Parts:  parts,
		Count:  len(parts),
		Failed: res.Failed(),
	}
}

func rawBody(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	if json.Valid(b) {
		return json.RawMessage(b)
	}
	s, _ := json.Marshal(string(b))
	return s
}

// ContextResponse reports the request metadata the gateway captured. The
// auth token value is never echoed.
type ContextResponse struct {
	CorrelationID    *string `json:"correlation_id"`
	UserID           *string `json:"user_id"`
	OrgID            *string `json:"org_id"`
	AuthTokenPresent bool    `json:"auth_token_present"`
}

// ToContextResponse converts captured metadata to an HTTP response DTO.
// Absent fields are null; present empty fields are "".
func ToContextResponse(v usercontext.Values) ContextResponse {
	_, hasToken := v.Get(usercontext.AuthToken)
	return ContextResponse{
		CorrelationID:    optional(v, usercontext.CorrelationID),
		UserID:           optional(v, usercontext.UserID),
		OrgID:            optional(v, usercontext.OrgID),
		AuthTokenPresent: hasToken,
	}
}

func optional(v usercontext.Values, f usercontext.Field) *string {
	s, ok := v.Get(f)
	if !ok {
		return nil
	}
	return &s
}
