package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// pruneAbove bounds the tracking map: once it grows past this many accounts
// a request sweeps out entries whose window has already passed.
const pruneAbove = 10_000

// RateLimiter allows one request per account per window. It is an injectable
// capability handed to the server at construction; the settlement core never
// sees it.
type RateLimiter struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	limit time.Duration
	now   func() time.Time
}

func NewRateLimiter(limit time.Duration) *RateLimiter {
	return &RateLimiter{
		seen:  make(map[string]time.Time),
		limit: limit,
		now:   time.Now,
	}
}

// WithClock replaces the limiter's time source.
func (r *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	r.now = now
	return r
}

// Allow reports whether the account may proceed and, if so, starts its next
// window.
func (r *RateLimiter) Allow(accountID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if last, ok := r.seen[accountID]; ok && now.Sub(last) < r.limit {
		return false
	}
	if len(r.seen) > pruneAbove {
		r.prune(now)
	}
	r.seen[accountID] = now
	return true
}

func (r *RateLimiter) prune(now time.Time) {
	for id, last := range r.seen {
		if now.Sub(last) >= r.limit {
			delete(r.seen, id)
		}
	}
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.GetHeader("X-Account-ID")
		if accountID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "X-Account-ID header required"})
			c.Abort()
			return
		}
		if !r.Allow(accountID) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
