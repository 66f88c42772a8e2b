package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/domain"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/config"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
	"github.com/jsamuelsen11/tmx-edge-gateway/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testLimits() config.GatewayConfig {
	return config.GatewayConfig{MaxFanout: 2, MaxAggregatePaths: 3, MaxBodyBytes: 1 << 10}
}

func boundContext(t *testing.T, values map[usercontext.Field]string) context.Context {
	t.Helper()

	store := usercontext.NewStore()
	ctx, md := store.Bind(context.Background())
	for f, v := range values {
		md.Set(f, v)
	}
	t.Cleanup(func() { store.Unbind(ctx) })
	return ctx
}

func pathIs(path string) any {
	return mock.MatchedBy(func(r *domain.ProxyRequest) bool { return r.Path == path })
}

func TestNewGatewayService_NilLogger(t *testing.T) {
	t.Parallel()

	svc := NewGatewayService(mocks.NewMockUpstream(t), testLimits(), nil)
	require.NotNil(t, svc.logger)
}

// --- Forward ---

func TestGatewayService_Forward(t *testing.T) {
	t.Parallel()

	t.Run("relays upstream response", func(t *testing.T) {
		t.Parallel()
		up := mocks.NewMockUpstream(t)
		svc := NewGatewayService(up, testLimits(), discardLogger())

		req := &domain.ProxyRequest{Method: http.MethodGet, Path: "/orders"}
		want := &domain.ProxyResponse{StatusCode: http.StatusOK, Body: []byte(`[]`)}
		up.EXPECT().Forward(mock.Anything, req).Return(want, nil)

		got, err := svc.Forward(context.Background(), req)
		require.NoError(t, err)
		assert.Same(t, want, got)
	})

	t.Run("rejects invalid request without calling upstream", func(t *testing.T) {
		t.Parallel()
		up := mocks.NewMockUpstream(t)
		svc := NewGatewayService(up, testLimits(), discardLogger())

		_, err := svc.Forward(context.Background(), &domain.ProxyRequest{Method: "TRACE", Path: "/../etc"})

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "method")
		assert.Contains(t, verr.Fields, "path")
	})

	t.Run("propagates upstream failure", func(t *testing.T) {
		t.Parallel()
		up := mocks.NewMockUpstream(t)
		svc := NewGatewayService(up, testLimits(), discardLogger())

		up.EXPECT().Forward(mock.Anything, mock.Anything).Return(nil, domain.ErrTimeout)

		_, err := svc.Forward(context.Background(), &domain.ProxyRequest{Method: http.MethodGet, Path: "/slow"})
		require.ErrorIs(t, err, domain.ErrTimeout)
	})

	t.Run("passes bound metadata to upstream", func(t *testing.T) {
		t.Parallel()
		up := mocks.NewMockUpstream(t)
		svc := NewGatewayService(up, testLimits(), discardLogger())
		ctx := boundContext(t, map[usercontext.Field]string{usercontext.UserID: "u-42"})

		up.EXPECT().Forward(mock.Anything, mock.Anything).
			RunAndReturn(func(ctx context.Context, _ *domain.ProxyRequest) (*domain.ProxyResponse, error) {
				v, ok := usercontext.Lookup(ctx, usercontext.UserID)
				assert.True(t, ok)
				assert.Equal(t, "u-42", v)
				return &domain.ProxyResponse{StatusCode: http.StatusNoContent}, nil
			})

		_, err := svc.Forward(ctx, &domain.ProxyRequest{Method: http.MethodDelete, Path: "/orders/1"})
		require.NoError(t, err)
	})
}

// --- Aggregate ---

func TestGatewayService_Aggregate(t *testing.T) {
	t.Parallel()

	t.Run("collects parts in request order", func(t *testing.T) {
		t.Parallel()
		up := mocks.NewMockUpstream(t)
		svc := NewGatewayService(up, testLimits(), discardLogger())

		up.EXPECT().Forward(mock.Anything, pathIs("/a")).
			Return(&domain.ProxyResponse{StatusCode: http.StatusOK, Body: []byte(`"a"`)}, nil)
		up.EXPECT().Forward(mock.Anything, pathIs("/b")).
			Return(&domain.ProxyResponse{StatusCode: http.StatusNotFound, Body: []byte(`"b"`)}, nil)
		up.EXPECT().Forward(mock.Anything, pathIs("/c")).
			Return(nil, domain.ErrUnavailable)

		got, err := svc.Aggregate(context.Background(), []string{"/a", "/b", "/c"})
		require.NoError(t, err)
		require.Len(t, got.Parts, 3)

		assert.Equal(t, "/a", got.Parts[0].Path)
		assert.Equal(t, http.StatusOK, got.Parts[0].StatusCode)
		assert.Equal(t, `"a"`, string(got.Parts[0].Body))

		assert.Equal(t, http.StatusNotFound, got.Parts[1].StatusCode)
		assert.NoError(t, got.Parts[1].Err, "an upstream error status is not a failed part")

		assert.ErrorIs(t, got.Parts[2].Err, domain.ErrUnavailable)
		assert.Equal(t, 1, got.Failed())
	})

	t.Run("issues GETs", func(t *testing.T) {
		t.Parallel()
		up := mocks.NewMockUpstream(t)
		svc := NewGatewayService(up, testLimits(), discardLogger())

		up.EXPECT().Forward(mock.Anything, mock.MatchedBy(func(r *domain.ProxyRequest) bool {
			return r.Method == http.MethodGet && r.Body == nil
		})).Return(&domain.ProxyResponse{StatusCode: http.StatusOK}, nil)

		_, err := svc.Aggregate(context.Background(), []string{"/x"})
		require.NoError(t, err)
	})

	t.Run("every call sees the bound metadata", func(t *testing.T) {
		t.Parallel()
		up := mocks.NewMockUpstream(t)
		svc := NewGatewayService(up, testLimits(), discardLogger())
		ctx := boundContext(t, map[usercontext.Field]string{
			usercontext.CorrelationID: "c-agg",
			usercontext.OrgID:         "o-1",
		})

		var (
			mu   sync.Mutex
			seen []string
		)
		up.EXPECT().Forward(mock.Anything, mock.Anything).
			RunAndReturn(func(ctx context.Context, _ *domain.ProxyRequest) (*domain.ProxyResponse, error) {
				v, _ := usercontext.Lookup(ctx, usercontext.CorrelationID)
				mu.Lock()
				seen = append(seen, v)
				mu.Unlock()
				return &domain.ProxyResponse{StatusCode: http.StatusOK}, nil
			}).Times(3)

		_, err := svc.Aggregate(ctx, []string{"/a", "/b", "/c"})
		require.NoError(t, err)
		assert.Equal(t, []string{"c-agg", "c-agg", "c-agg"}, seen)
	})

	validationCases := []struct {
		name  string
		paths []string
	}{
		{"no paths", nil},
		{"too many paths", []string{"/a", "/b", "/c", "/d"}},
		{"relative path", []string{"/a", "b"}},
		{"dot segment", []string{"/a/../admin"}},
	}
	for _, tc := range validationCases {
		t.Run("rejects "+tc.name, func(t *testing.T) {
			t.Parallel()
			up := mocks.NewMockUpstream(t)
			svc := NewGatewayService(up, testLimits(), discardLogger())

			_, err := svc.Aggregate(context.Background(), tc.paths)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	t.Run("canceled context marks parts failed", func(t *testing.T) {
		t.Parallel()
		up := mocks.NewMockUpstream(t)
		svc := NewGatewayService(up, config.GatewayConfig{MaxFanout: 1, MaxAggregatePaths: 3}, discardLogger())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		up.EXPECT().Forward(mock.Anything, mock.Anything).
			RunAndReturn(func(ctx context.Context, _ *domain.ProxyRequest) (*domain.ProxyResponse, error) {
				return nil, ctx.Err()
			}).Maybe()

		got, err := svc.Aggregate(ctx, []string{"/a", "/b"})
		require.NoError(t, err)
		for _, p := range got.Parts {
			assert.True(t, errors.Is(p.Err, context.Canceled), "part %s: %v", p.Path, p.Err)
		}
	})
}

// --- Describe ---

func TestGatewayService_Describe(t *testing.T) {
	t.Parallel()

	t.Run("returns bound values", func(t *testing.T) {
		t.Parallel()
		svc := NewGatewayService(mocks.NewMockUpstream(t), testLimits(), discardLogger())
		ctx := boundContext(t, map[usercontext.Field]string{
			usercontext.CorrelationID: "c-1",
			usercontext.AuthToken:     "tok",
		})

		v, err := svc.Describe(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, v.Len())
		got, _ := v.Get(usercontext.CorrelationID)
		assert.Equal(t, "c-1", got)
	})

	t.Run("unbound context", func(t *testing.T) {
		t.Parallel()
		svc := NewGatewayService(mocks.NewMockUpstream(t), testLimits(), discardLogger())

		_, err := svc.Describe(context.Background())
		require.ErrorIs(t, err, usercontext.ErrNoContextBound)
	})
}
