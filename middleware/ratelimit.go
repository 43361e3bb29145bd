package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Limits tunes the per-client token bucket.
type Limits struct {
	Rate           float64       // tokens added per refill interval
	Burst          float64       // bucket capacity
	RefillInterval time.Duration // defaults to one second
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limits  Limits
}

func NewRateLimiter(limits Limits) *RateLimiter {
	if limits.RefillInterval <= 0 {
		limits.RefillInterval = time.Second
	}
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		limits:  limits,
	}
}

// allow takes one token from ip's bucket, reporting whether the request
// may proceed and, when it may not, how long until the next token.
func (rl *RateLimiter) allow(ip string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{tokens: rl.limits.Burst, lastRefill: now}
		rl.buckets[ip] = b
	}

	refill := float64(now.Sub(b.lastRefill)) / float64(rl.limits.RefillInterval) * rl.limits.Rate
	b.tokens = math.Min(rl.limits.Burst, b.tokens+refill)
	b.lastRefill = now

	if b.tokens < 1 {
		if rl.limits.Rate <= 0 {
			return false, rl.limits.RefillInterval
		}
		wait := time.Duration((1 - b.tokens) / rl.limits.Rate * float64(rl.limits.RefillInterval))
		return false, wait
	}

	b.tokens--
	return true, 0
}

// RateLimit rejects clients that exhaust their bucket with a 429 and a
// Retry-After hint.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := rl.allow(c.ClientIP(), time.Now())
		if !ok {
			seconds := int(math.Ceil(wait.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":             "Rate limit exceeded. Please try again later.",
				"retryAfterSeconds": seconds,
			})
			return
		}

		c.Next()
	}
}
