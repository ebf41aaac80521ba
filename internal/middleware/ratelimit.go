package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for the rate limiter middleware.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	// IdleAfter drops a client's bucket once it has been unused this long.
	IdleAfter time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-client token bucket keyed by remote IP.
type RateLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	clients map[string]*clientLimiter
	now     func() time.Time
}

// NewRateLimiter creates a limiter. A zero IdleAfter means ten minutes.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = 10 * time.Minute
	}
	return &RateLimiter{cfg: cfg, clients: make(map[string]*clientLimiter), now: time.Now}
}

func (l *RateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	cl, ok := l.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst)}
		l.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// Sweep forgets clients idle for longer than IdleAfter and returns how
// many remain. The preview server calls it from its cron scheduler.
func (l *RateLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.cfg.IdleAfter)
	for ip, cl := range l.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
	return len(l.clients)
}

// Handler rejects requests over the limit with 429 and a Retry-After hint.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := l.limiter(clientIP(r))

		reservation := limiter.Reserve()
		if !reservation.OK() {
			writeTooManyRequests(w, r, 0)
			return
		}
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			writeTooManyRequests(w, r, int(delay.Seconds())+1)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		next.ServeHTTP(w, r)
	})
}

// clientIP is the host part of RemoteAddr. X-Forwarded-For is ignored.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeTooManyRequests(w http.ResponseWriter, r *http.Request, retryAfterSecs int) {
	if retryAfterSecs > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSecs))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":       http.StatusTooManyRequests,
		"message":    "rate limit exceeded",
		"request_id": RequestIDFromContext(r.Context()),
	})
}
