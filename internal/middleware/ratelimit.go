package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// sweepAfter bounds how many idle clients are remembered between sweeps.
const sweepAfter = 4096

type bucket struct {
	count int
	until time.Time
}

// RateLimit allows limit requests per client IP in each fixed window.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	return rateLimitWithClock(limit, per, time.Now)
}

func rateLimitWithClock(limit int, per time.Duration, now func() time.Time) func(http.Handler) http.Handler {
	var mu sync.Mutex
	buckets := make(map[string]*bucket)
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)
			if key == "" {
				key = r.RemoteAddr
			}
			mu.Lock()
			ts := now()
			if len(buckets) >= sweepAfter {
				sweep(buckets, ts)
			}
			b, ok := buckets[key]
			if !ok || ts.After(b.until) {
				b = &bucket{until: ts.Add(per)}
				buckets[key] = b
			}
			if b.count >= limit {
				retry := int(b.until.Sub(ts).Seconds()) + 1
				mu.Unlock()
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"code":"rate_limited","message":"too many requests"}}` + "\n"))
				return
			}
			b.count++
			mu.Unlock()
			next.ServeHTTP(w, r)
		})
	}
}

func sweep(buckets map[string]*bucket, now time.Time) {
	for key, b := range buckets {
		if now.After(b.until) {
			delete(buckets, key)
		}
	}
}
