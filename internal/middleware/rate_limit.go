package middleware

import (
	"log"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chen-Zehua-TP/sgvmart/internal/ratelimit"
)

// RateLimit enforces the limiter per client. The key is the user id for
// members, the session token for guests, the client IP for everyone else. A
// broken limiter store fails open: better to serve than to lock everyone out.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rateLimitKey(c)

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Printf("rate limiter error: %v", err)
			c.Next()
			return
		}

		if !decision.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many requests, please try again later",
				"retryAfter": int(math.Ceil(decision.RetryAfter.Seconds())),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func rateLimitKey(c *gin.Context) string {
	if userID := c.GetString("userID"); userID != "" {
		return "user:" + userID
	}
	if sessionID := c.GetString("sessionID"); sessionID != "" {
		return "session:" + sessionID
	}
	return "ip:" + c.ClientIP()
}
