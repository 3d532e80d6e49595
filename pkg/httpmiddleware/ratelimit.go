package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	// Max requests per Window, also used as the burst size.
	Max    int
	Window time.Duration
	// KeyFunc identifies the client. Defaults to the client IP.
	KeyFunc func(*http.Request) string
}

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

type limiters struct {
	cfg RateLimitConfig

	mu      sync.Mutex
	entries map[string]*limiterEntry
}

func (l *limiters) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(rate.Every(l.cfg.Window/time.Duration(l.cfg.Max)), l.cfg.Max)}
		l.entries[key] = e
	}
	e.seen = now
	return e.lim
}

// evict drops clients idle for longer than two windows.
func (l *limiters) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if now.Sub(e.seen) > 2*l.cfg.Window {
			delete(l.entries, key)
		}
	}
}

// RateLimit rejects clients exceeding cfg.Max requests per cfg.Window with
// 429. Idle clients are evicted until ctx is done. A non-positive Max
// disables limiting.
func RateLimit(ctx context.Context, cfg RateLimitConfig) Middleware {
	if cfg.Max <= 0 || cfg.Window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientIP
	}
	l := &limiters{cfg: cfg, entries: make(map[string]*limiterEntry)}

	go func() {
		ticker := time.NewTicker(2 * cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.evict(now)
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			res := l.get(cfg.KeyFunc(r), now).ReserveN(now, 1)
			if delay := res.DelayFrom(now); delay > 0 {
				res.CancelAt(now)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For hop, X-Real-IP, or the remote
// address host.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
