package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type keyedRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       *sync.RWMutex
	r        rate.Limit
	b        int // burst
}

func newKeyedRateLimiter(r rate.Limit, b int) *keyedRateLimiter {
	return &keyedRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		mu:       &sync.RWMutex{},
		r:        r,
		b:        b,
	}
}

func (k *keyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	limiter, exists := k.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(k.r, k.b)
		k.limiters[key] = limiter
	}

	return limiter
}

func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	limiter := newKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests from this IP"})
			return
		}
		c.Next()
	}
}

// RateLimitByEmployee limits per authenticated caller; unauthenticated
// requests pass through to the next middleware.
func RateLimitByEmployee(r rate.Limit, b int) gin.HandlerFunc {
	limiter := newKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		employeeID := c.GetString("employee_id")
		if employeeID == "" {
			c.Next()
			return
		}
		if !limiter.GetLimiter(employeeID).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests from this user"})
			return
		}
		c.Next()
	}
}
