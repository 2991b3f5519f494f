package middleware

import (
	"fmt"
	"net/http"

	"tierraalta/internal/metrics"
	"tierraalta/internal/pkg/response"
	"tierraalta/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimit throttles a route per principal, or per client IP for anonymous
// callers. Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, log *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if p, ok := PrincipalFrom(c); ok {
			key = fmt.Sprintf("user:%d", p.ID)
		}
		key = c.FullPath() + "|" + key

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn().Err(err).Str("request_id", requestID(c)).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if !allowed {
			metrics.IncRateLimited(c.FullPath())
			response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
