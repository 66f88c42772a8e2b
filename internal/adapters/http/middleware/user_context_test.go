package middleware_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
)

func TestUserContext_CapturesHeaders(t *testing.T) {
	t.Parallel()

	store := usercontext.NewStore()
	var got usercontext.Values
	handler := middleware.UserContext(store, discardLogger())(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = usercontext.ValuesFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("tmx-correlation-id", "c-1")
	req.Header.Set("tmx-auth-token", "tok")
	req.Header.Set("tmx-user-id", "u-42")
	req.Header.Set("tmx-org-id", "o-7")
	handler.ServeHTTP(rec, req)

	want := map[usercontext.Field]string{
		usercontext.CorrelationID: "c-1",
		usercontext.AuthToken:     "tok",
		usercontext.UserID:        "u-42",
		usercontext.OrgID:         "o-7",
	}
	for f, v := range want {
		if gv, ok := got.Get(f); !ok || gv != v {
			t.Errorf("%s = %q (present=%v), want %q", f, gv, ok, v)
		}
	}
	if respID := rec.Header().Get("tmx-correlation-id"); respID != "c-1" {
		t.Errorf("response tmx-correlation-id = %q, want %q", respID, "c-1")
	}
}

func TestUserContext_NoHeadersStillServes(t *testing.T) {
	t.Parallel()

	store := usercontext.NewStore()
	called := false
	handler := middleware.UserContext(store, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, err := usercontext.Current(r.Context()); err != nil {
			t.Errorf("Current() error = %v, want a bound empty context", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("next handler was not called")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if _, ok := rec.Header()["Tmx-Correlation-Id"]; ok {
		t.Error("response carries tmx-correlation-id, want none when not received")
	}
}

func TestUserContext_UnbindsAfterHandler(t *testing.T) {
	t.Parallel()

	store := usercontext.NewStore()
	var md *usercontext.Metadata
	handler := middleware.UserContext(store, discardLogger())(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		md, _ = usercontext.Current(r.Context())
		if n := store.Active(); n != 1 {
			t.Errorf("store.Active() during request = %d, want 1", n)
		}
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("tmx-user-id", "u-1")
	handler.ServeHTTP(rec, req)

	if n := store.Active(); n != 0 {
		t.Errorf("store.Active() after request = %d, want 0", n)
	}
	if _, ok := md.UserID(); ok {
		t.Error("metadata retained user id after the request completed")
	}
}

func TestUserContext_UnbindsOnPanic(t *testing.T) {
	t.Parallel()

	store := usercontext.NewStore()
	handler := middleware.Chain(
		middleware.Recovery(discardLogger()),
		middleware.UserContext(store, discardLogger()),
	)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("handler exploded")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("tmx-correlation-id", "c-panic")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if n := store.Active(); n != 0 {
		t.Errorf("store.Active() = %d after panic, want 0", n)
	}
}

func TestUserContext_UnbindsOnPanicInsideTimeout(t *testing.T) {
	t.Parallel()

	store := usercontext.NewStore()
	handler := middleware.Chain(
		middleware.Recovery(discardLogger()),
		middleware.UserContext(store, discardLogger()),
		middleware.Timeout(time.Second),
	)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("handler exploded on worker goroutine")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if n := store.Active(); n != 0 {
		t.Errorf("store.Active() = %d after panic, want 0", n)
	}
}

func TestUserContext_TimedOutHandlerSeesReleasedBinding(t *testing.T) {
	t.Parallel()

	store := usercontext.NewStore()
	proceed := make(chan struct{})
	observed := make(chan error, 1)

	handler := middleware.Chain(
		middleware.UserContext(store, discardLogger()),
		middleware.Timeout(10*time.Millisecond),
	)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		<-proceed
		_, err := usercontext.Current(r.Context())
		observed <- err
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/slow", http.NoBody)
	req.Header.Set("tmx-user-id", "u-slow")
	handler.ServeHTTP(rec, req)
	close(proceed)

	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusGatewayTimeout)
	}
	if err := <-observed; !errors.Is(err, usercontext.ErrNoContextBound) {
		t.Errorf("late Current() error = %v, want ErrNoContextBound", err)
	}
}

func TestUserContext_NoLeakBetweenConcurrentRequests(t *testing.T) {
	t.Parallel()

	store := usercontext.NewStore()
	handler := middleware.UserContext(store, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Read from a spawned goroutine, as an async continuation would.
		done := make(chan string)
		go func() {
			v, _ := usercontext.Lookup(r.Context(), usercontext.UserID)
			done <- v
		}()
		_, _ = w.Write([]byte(<-done))
	}))

	const requests = 50
	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			want := fmt.Sprintf("user-%d", i)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
			req.Header.Set("tmx-user-id", want)
			handler.ServeHTTP(rec, req)

			if got := rec.Body.String(); got != want {
				t.Errorf("request %d observed user id %q, want %q", i, got, want)
			}
		}()
	}
	wg.Wait()

	if n := store.Active(); n != 0 {
		t.Errorf("store.Active() = %d after all requests, want 0", n)
	}
}
