package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/olive-green/api-scheduler/internal/config"
)

// ipLimiters keeps one token bucket per client IP. Entries are cheap enough
// that an admin surface's worth of distinct IPs is not a real memory
// concern.
type ipLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newIPLimiters(requestsPerSecond float64, burst int) *ipLimiters {
	return &ipLimiters{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[ip] = lim
	}
	return lim
}

// RateLimiter middleware enforces cfg.RateLimit using an in-memory
// token-bucket limiter per client IP (golang.org/x/time/rate), replacing a
// Redis-backed counter: the admin surface is single-node, so a shared
// external store buys nothing here.
func RateLimiter(cfg *config.Config) gin.HandlerFunc {
	if !cfg.RateLimit.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	limiters := newIPLimiters(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	return func(c *gin.Context) {
		lim := limiters.get(c.ClientIP())
		if !lim.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
