package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// visitor tracks request count for a single IP within a time window.
type visitor struct {
	count       atomic.Int64
	windowStart atomic.Int64 // unix seconds
}

// RateLimiter implements fixed-window per-IP rate limiting using a sync.Map.
type RateLimiter struct {
	visitors   sync.Map // map[string]*visitor
	limit      int64
	windowSecs int64
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewRateLimiter creates a rate limiter with the given requests-per-minute limit.
// It starts a background goroutine that evicts stale entries every window
// until Stop is called.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	rl := &RateLimiter{
		limit:      int64(requestsPerMinute),
		windowSecs: 60,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// allow reports whether ip is within its limit and, if not, how many
// seconds remain in the current window.
func (rl *RateLimiter) allow(ip string) (bool, int64) {
	now := rl.now().Unix()

	val, loaded := rl.visitors.LoadOrStore(ip, &visitor{})
	v := val.(*visitor)
	if !loaded {
		v.windowStart.Store(now)
		v.count.Store(1)
		return true, 0
	}

	start := v.windowStart.Load()
	if now-start >= rl.windowSecs {
		v.windowStart.Store(now)
		v.count.Store(1)
		return true, 0
	}
	if v.count.Add(1) <= rl.limit {
		return true, 0
	}
	return false, rl.windowSecs - (now - start)
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Duration(rl.windowSecs) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			cutoff := rl.now().Unix() - 2*rl.windowSecs
			rl.visitors.Range(func(key, val any) bool {
				if val.(*visitor).windowStart.Load() < cutoff {
					rl.visitors.Delete(key)
				}
				return true
			})
		}
	}
}

// clientIP extracts the client IP from RemoteAddr, which chi's RealIP
// middleware has already rewritten from X-Forwarded-For / X-Real-IP.
func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 && !strings.HasSuffix(addr, "]") {
		return strings.Trim(addr[:idx], "[]")
	}
	return strings.Trim(addr, "[]")
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retryAfter := rl.allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
