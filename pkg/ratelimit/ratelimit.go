// Package ratelimit provides per-IP request limiting middleware.
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/attnlabs/viral-middleware/pkg/app/errors"
	apphttp "github.com/attnlabs/viral-middleware/pkg/app/http"
)

// Maximum number of tracked IPs to prevent memory exhaustion.
const maxEntries = 10000

// IPLimiter manages per-IP token-bucket limiters with bounded memory.
type IPLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPLimiter creates a limiter allowing perMinute requests per minute
// with the given burst per source IP.
func NewIPLimiter(perMinute, burst int) *IPLimiter {
	if perMinute <= 0 {
		perMinute = 5
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &IPLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}
}

// Allow reports whether a request from ip may proceed now.
func (l *IPLimiter) Allow(ip string) bool {
	return l.get(ip).Allow()
}

func (l *IPLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.limiters[ip]
	if !exists {
		// At capacity, evict the least recently seen IP first.
		if len(l.limiters) >= maxEntries {
			var oldestIP string
			var oldestTime time.Time
			for ip, entry := range l.limiters {
				if oldestIP == "" || entry.lastSeen.Before(oldestTime) {
					oldestIP = ip
					oldestTime = entry.lastSeen
				}
			}
			if oldestIP != "" {
				delete(l.limiters, oldestIP)
			}
		}

		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// Middleware returns a chi-compatible middleware that rejects requests
// exceeding the per-IP limit with 429 before any downstream work runs.
func (l *IPLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.Allow(ip) {
			w.Header().Set("Retry-After", "60")
			apphttp.DefaultErrorHandler(w, apperrors.RateLimitedError(nil, "too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the request source IP. RemoteAddr is already rewritten
// by chi's RealIP middleware when X-Forwarded-For is present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
