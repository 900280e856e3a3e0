package middleware

import (
	"net/http"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gin-gonic/gin"
)

// NewRateLimiter allows limit requests per window for each key, with tokens
// refilled evenly across the window. A non-positive limit or window returns nil,
// which the middlewares treat as "no limit".
func NewRateLimiter(limit int, window time.Duration) *limiter.Limiter {
	if limit <= 0 || window <= 0 {
		return nil
	}
	lmt := tollbooth.NewLimiter(float64(limit)/window.Seconds(), &limiter.ExpirableOptions{
		DefaultExpirationTTL: 2 * window,
	})
	lmt.SetBurst(limit)
	return lmt
}

// RateLimit limits by client IP.
func RateLimit(lmt *limiter.Limiter) gin.HandlerFunc {
	return limitBy(lmt, "rate limit exceeded", func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitByUser limits per authenticated user; mount after AuthRequired.
func RateLimitByUser(lmt *limiter.Limiter) gin.HandlerFunc {
	return limitBy(lmt, "too many updates, slow down", func(c *gin.Context) string {
		if id := GetUserID(c); id != "" {
			return id
		}
		return c.ClientIP()
	})
}

func limitBy(lmt *limiter.Limiter, msg string, key func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if lmt == nil {
			c.Next()
			return
		}
		if httpErr := tollbooth.LimitByKeys(lmt, []string{key(c)}); httpErr != nil {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": msg})
			return
		}
		c.Next()
	}
}
