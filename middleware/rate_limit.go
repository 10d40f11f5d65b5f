package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed window counter keyed by client IP.
type RateLimiter struct {
	mu        sync.Mutex
	tokens    map[string]int
	lastReset time.Time
	rate      int           // requests per window
	window    time.Duration // time window
	now       func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:    make(map[string]int),
		lastReset: time.Now(),
		rate:      rate,
		window:    window,
		now:       time.Now,
	}
}

// Allow records a request for key and reports whether it fits the window.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastReset) > l.window {
		l.tokens = make(map[string]int)
		l.lastReset = now
	}

	count := l.tokens[key]
	if count >= l.rate {
		return false
	}
	l.tokens[key] = count + 1
	return true
}

// RateLimit middleware limits requests per IP. A non-positive rate disables it.
func RateLimit(rate int, window time.Duration) gin.HandlerFunc {
	if rate <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := NewRateLimiter(rate, window)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !limiter.Allow(clientIP) {
			slog.WarnContext(c.Request.Context(), "rate limit exceeded",
				"client_ip", clientIP,
				"request_id", GetRequestID(c),
			)

			body := gin.H{
				"error": "Rate limit exceeded. Please try again later.",
				"code":  "RATE_LIMITED",
			}
			if traceID := GetTraceID(c); traceID != "" {
				body["traceId"] = traceID
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, body)
			return
		}

		c.Next()
	}
}
