package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/magtcoin/presale-backend/internal/logger"
	"github.com/magtcoin/presale-backend/internal/ratelimit"
)

// RateLimit returns a gin middleware that counts requests per client IP
// against the given limiter and rejects with 429 once the window is full.
// Separate limiter instances give independent budgets, e.g. a general one for
// the whole API and a stricter one for the RPC proxy route.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !limiter.Allow(key) {
			logger.Warn("rate limit exceeded",
				zap.String("client_ip", key),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"ok":  false,
				"err": "rate_limited",
			})
			return
		}
		c.Next()
	}
}
