package middlewares

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// Limiter decides whether one more hit for key fits in the current window.
// The in-process RateLimiter and redisclient.RateLimiter both satisfy it.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// RateLimiter is a fixed-window limiter local to this process.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	clients map[string]*clientBucket
	now     func() time.Time
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

// pruneThreshold bounds how many idle buckets pile up between sweeps.
const pruneThreshold = 10000

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[key]

	if !ok || now.After(b.windowEnd) {
		if len(rl.clients) >= pruneThreshold {
			rl.prune(now)
		}

		rl.clients[key] = &clientBucket{
			count:     1,
			windowEnd: now.Add(rl.window),
		}
		return true, 0, nil
	}

	if b.count >= rl.limit {
		return false, b.windowEnd.Sub(now), nil
	}

	b.count++
	return true, 0, nil
}

func (rl *RateLimiter) prune(now time.Time) {
	for key, b := range rl.clients {
		if now.After(b.windowEnd) {
			delete(rl.clients, key)
		}
	}
}

// RateLimit enforces l for the key derived by keyFn. Limiter errors fail
// open: the request is served and the error logged.
func RateLimit(l Limiter, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = KeyByIP(c)
		}

		allowed, retryAfter, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "rate limiter unavailable", "err", err)
			c.Next()
			return
		}

		if !allowed {
			secs := int(math.Ceil(retryAfter.Seconds()))
			if secs < 0 {
				secs = 0
			}

			c.Header("Retry-After", strconv.Itoa(secs))
			c.Abort()
			handlers.RespondError(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again shortly.", nil)
			return
		}

		c.Next()
	}
}

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return "ip:" + clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
