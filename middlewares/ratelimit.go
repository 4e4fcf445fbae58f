package middlewares

import (
	"net/http"

	"debatebot/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware gates every request by client address before any route
// logic runs.
func RateLimitMiddleware(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please wait and try again.",
			})
			return
		}
		c.Next()
	}
}
