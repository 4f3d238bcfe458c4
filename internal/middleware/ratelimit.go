package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"atelier/internal/pkg/apperr"
	"atelier/internal/pkg/response"
)

// RateLimiter keeps one token bucket per caller. Authenticated callers are
// keyed by user id, everyone else by client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	rps      rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		idle:     10 * time.Minute,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[key] = v
	}
	v.lastSeen = now

	if len(rl.limiters) > 1024 {
		rl.evict(now)
	}
	return v.limiter.AllowN(now, 1)
}

// evict drops buckets idle for longer than rl.idle. Caller holds mu.
func (rl *RateLimiter) evict(now time.Time) {
	for key, v := range rl.limiters {
		if now.Sub(v.lastSeen) > rl.idle {
			delete(rl.limiters, key)
		}
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID := c.GetInt64("user_id"); userID > 0 {
			key = fmt.Sprintf("user:%d", userID)
		}

		if !rl.Allow(key) {
			c.Header("Retry-After", "1")
			response.Fail(c, apperr.Limit("too many requests"))
			return
		}
		c.Next()
	}
}
