package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func TestAllowWindow(t *testing.T) {
	require := require.New(t)
	clk := clock.NewMock()
	l := New(3, time.Minute, clk)

	for i := 0; i < 3; i++ {
		require.True(l.Allow("a"))
	}
	require.False(l.Allow("a"))
	require.True(l.Allow("b"))

	clk.Add(59 * time.Second)
	require.False(l.Allow("a"))
	require.Equal(time.Second, l.RetryAfter("a"))

	clk.Add(time.Second)
	require.True(l.Allow("a"))
}

func TestDisabled(t *testing.T) {
	require := require.New(t)
	l := New(0, time.Minute, clock.NewMock())
	for i := 0; i < 100; i++ {
		require.True(l.Allow("a"))
	}
	require.Equal(0, l.Len())
}

func TestSweep(t *testing.T) {
	require := require.New(t)
	clk := clock.NewMock()
	l := New(1, time.Minute, clk)

	l.Allow("a")
	clk.Add(30 * time.Second)
	l.Allow("b")
	require.Equal(2, l.Len())

	clk.Add(30 * time.Second)
	require.Equal(1, l.Sweep())
	require.Equal(1, l.Len())

	clk.Add(time.Hour)
	require.Equal(1, l.Sweep())
	require.Equal(0, l.Len())
}

func TestRun(t *testing.T) {
	require := require.New(t)
	clk := clock.NewMock()
	l := New(1, time.Minute, clk)
	l.Allow("a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx, time.Minute)
		close(done)
	}()

	require.Eventually(func() bool {
		clk.Add(time.Minute)
		return l.Len() == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestConcurrentAllow(t *testing.T) {
	require := require.New(t)
	l := New(50, time.Minute, clock.NewMock())

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("k") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(50, allowed)
}

func TestMiddleware(t *testing.T) {
	require := require.New(t)
	l := New(1, time.Minute, clock.NewMock())
	h := l.Middleware(func(r *http.Request) string {
		return r.Header.Get("X-Key")
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if key != "" {
			req.Header.Set("X-Key", key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(http.StatusNoContent, do("a").Code)
	rec := do("a")
	require.Equal(http.StatusTooManyRequests, rec.Code)
	require.Equal("60", rec.Header().Get("Retry-After"))
	require.Contains(rec.Body.String(), "rate_limited")

	// unkeyed requests aren't counted
	require.Equal(http.StatusNoContent, do("").Code)
	require.Equal(http.StatusNoContent, do("").Code)
}
