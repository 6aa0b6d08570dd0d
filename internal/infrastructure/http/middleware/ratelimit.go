package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mealsmith/v2/internal/infrastructure/config"
)

// visitorIdleTimeout is how long a client's bucket survives without traffic
const visitorIdleTimeout = 10 * time.Minute

// RateLimiter applies a per-client token bucket. One client hammering the
// generation endpoint never consumes another client's budget.
type RateLimiter struct {
	config   *config.RateLimitConfig
	mutex    sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter from configuration
func NewRateLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		config:   cfg,
		visitors: make(map[string]*visitor),
	}
}

// Limit rejects requests that exceed the client's token bucket
func (rl *RateLimiter) Limit() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.config.Enable {
				next.ServeHTTP(w, r)
				return
			}

			if !rl.allow(clientKey(r)) {
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprint(w, `{"success":false,"error":"Rate limit exceeded"}`)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{
			limiter: rate.NewLimiter(
				rate.Limit(rl.config.GeneratePerMinute)/60,
				rl.config.Burst,
			),
		}
		rl.visitors[key] = v
		rl.pruneLocked()
	}
	v.lastSeen = time.Now()

	return v.limiter.Allow()
}

// pruneLocked drops buckets that have gone idle. Called with the mutex held
// whenever a new client shows up, which bounds the map without a janitor
// goroutine.
func (rl *RateLimiter) pruneLocked() {
	cutoff := time.Now().Add(-visitorIdleTimeout)
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
}

// clientKey identifies the client for rate limiting. RealIP middleware has
// already rewritten RemoteAddr when a proxy forwarded the request.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
