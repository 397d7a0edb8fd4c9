package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hezo-be/webinar-backend/pkg/response"
)

// Limiter counts hits per key across instances.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit rejects clients over the limit with 429. Limiter errors let the request through.
func RateLimit(limiter Limiter, scope string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		ok, err := limiter.Allow(c.Request.Context(), scope+":"+c.ClientIP())
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			response.Fail(c, http.StatusTooManyRequests, response.CodeRateLimited, "Too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
