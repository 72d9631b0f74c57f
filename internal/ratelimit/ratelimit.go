// Package ratelimit counts requests per key in fixed windows.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"
	jsoniter "github.com/json-iterator/go"
	"github.com/puzpuzpuz/xsync/v3"
)

type window struct {
	start time.Time
	count int
}

type Limiter struct {
	limit   int
	period  time.Duration
	clock   clock.Clock
	windows *xsync.MapOf[string, window]
}

// New allows limit calls per key in every period. A limit <= 0 disables the
// limiter.
func New(limit int, period time.Duration, clk clock.Clock) *Limiter {
	return &Limiter{
		limit:   limit,
		period:  period,
		clock:   clk,
		windows: xsync.NewMapOf[string, window](),
	}
}

func (l *Limiter) expired(w window, now time.Time) bool {
	return !now.Before(w.start.Add(l.period))
}

// Allow counts one call for key and reports whether it fits in the current
// window.
func (l *Limiter) Allow(key string) bool {
	if l.limit <= 0 {
		return true
	}
	now := l.clock.Now()
	w, _ := l.windows.Compute(key, func(old window, loaded bool) (window, bool) {
		if !loaded || l.expired(old, now) {
			return window{start: now, count: 1}, false
		}
		old.count++
		return old, false
	})
	return w.count <= l.limit
}

// RetryAfter is how long key has to wait for its window to reset.
func (l *Limiter) RetryAfter(key string) time.Duration {
	w, ok := l.windows.Load(key)
	if !ok {
		return 0
	}
	d := w.start.Add(l.period).Sub(l.clock.Now())
	if d < 0 {
		return 0
	}
	return d
}

// Sweep drops expired windows and returns how many it dropped.
func (l *Limiter) Sweep() int {
	now := l.clock.Now()
	dropped := 0
	l.windows.Range(func(key string, _ window) bool {
		l.windows.Compute(key, func(old window, loaded bool) (window, bool) {
			del := loaded && l.expired(old, now)
			if del {
				dropped++
			}
			return old, del
		})
		return true
	})
	return dropped
}

func (l *Limiter) Len() int {
	return l.windows.Size()
}

// Run sweeps every interval until ctx is done. It returns at once when every
// isn't positive.
func (l *Limiter) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := l.clock.Ticker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep()
		}
	}
}

// Middleware rejects requests over the limit with 429. Requests for which
// keyFn returns "" pass through.
func (l *Limiter) Middleware(keyFn func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" || l.Allow(key) {
				next.ServeHTTP(w, r)
				return
			}
			secs := int(l.RetryAfter(key).Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			jsoniter.NewEncoder(w).Encode(map[string]string{
				"error": "too many requests",
				"code":  "rate_limited",
			})
		})
	}
}
