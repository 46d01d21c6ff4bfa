package middlewares

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter enforces a fixed request budget per client IP per window on
// the liquidity-mutation endpoints. Backed by x/time/rate token buckets:
// budget tokens refilling over one window.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	budget   int
	window   time.Duration
}

func NewRateLimiter(budget int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		budget:   budget,
		window:   window,
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	lim, ok := rl.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(rate.Every(rl.window/time.Duration(rl.budget)), rl.budget)
		rl.limiters[ip] = lim
	}
	return lim
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lim := rl.limiterFor(c.ClientIP())
		res := lim.Reserve()
		if !res.OK() || res.Delay() > 0 {
			if res.OK() {
				retryAfter := int(res.Delay().Seconds()) + 1
				c.Header("Retry-After", strconv.Itoa(retryAfter))
				res.Cancel()
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
