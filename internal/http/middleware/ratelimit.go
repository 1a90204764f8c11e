package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/reportlens/reportlens/pkg/logging"
)

// bucketIdleTTL is how long an idle client's bucket survives before eviction.
const bucketIdleTTL = 10 * time.Minute

// RateLimiter applies a per-client token bucket. Analyze requests fan out to
// LLM calls that cost far more than the requests that trigger them, so the
// limiter sits in front of the whole authenticated API.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*tokenBucket
	rate    float64
	burst   int
	logger  *logging.Logger
}

type tokenBucket struct {
	tokens  float64
	touched time.Time
}

// NewRateLimiter creates a limiter allowing rate requests/sec with the given
// burst size per client IP.
func NewRateLimiter(rate float64, burst int, logger *logging.Logger) *RateLimiter {
	if logger == nil {
		logger = logging.Default()
	}
	rl := &RateLimiter{
		clients: make(map[string]*tokenBucket),
		rate:    rate,
		burst:   burst,
		logger:  logger,
	}
	go rl.evictIdle()
	return rl
}

// Allow reports whether a request from ip fits within the rate limit,
// consuming one token when it does.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.clients[ip]
	if !ok {
		b = &tokenBucket{tokens: float64(rl.burst), touched: now}
		rl.clients[ip] = b
	}

	b.tokens += now.Sub(b.touched).Seconds() * rl.rate
	if b.tokens > float64(rl.burst) {
		b.tokens = float64(rl.burst)
	}
	b.touched = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) evictIdle() {
	ticker := time.NewTicker(bucketIdleTTL / 2)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-bucketIdleTTL)
		for ip, b := range rl.clients {
			if b.touched.Before(cutoff) {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit returns an HTTP middleware that rejects over-limit requests with
// 429 Too Many Requests, logging each rejection.
func RateLimit(rate float64, burst int, logger *logging.Logger) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst, logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			// Prefer X-Real-Ip set by chi's RealIP middleware.
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				ip = xri
			}
			if !limiter.Allow(ip) {
				limiter.logger.Warn("rate limit exceeded",
					"client_ip", ip,
					"method", r.Method,
					"path", r.URL.Path,
				)
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
