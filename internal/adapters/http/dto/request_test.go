package dto_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/http/dto"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/domain"
)

func TestAggregateRequest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     dto.AggregateRequest
		wantErr bool
	}{
		{"valid", dto.AggregateRequest{Paths: []string{"/a", "/b"}}, false},
		{"missing", dto.AggregateRequest{}, true},
		{"blank entry", dto.AggregateRequest{Paths: []string{"/a", "  "}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
		})
	}
}

func TestAggregatePathsFromQuery(t *testing.T) {
	t.Parallel()

	q := url.Values{"path": {"/a", "/b, /c", ""}, "other": {"/x"}}
	assert.Equal(t, []string{"/a", "/b", "/c"}, dto.AggregatePathsFromQuery(q))
	assert.Empty(t, dto.AggregatePathsFromQuery(url.Values{}))
}
