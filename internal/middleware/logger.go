package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestLogger writes one access log entry per request, logs attached
// errors with full detail and recovers from panics with a generic 500.
func RequestLogger(log *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error().
					Str("request_id", requestID(c)).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("panic", fmt.Sprintf("%v", recovered)).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "internal server error",
					},
				})
			}

			status := c.Writer.Status()
			event := log.Info()
			switch {
			case status >= http.StatusInternalServerError || len(c.Errors) > 0:
				event = log.Error()
			case status >= http.StatusBadRequest:
				event = log.Warn()
			}

			event = event.
				Str("request_id", requestID(c)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("route", c.FullPath()).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("client_ip", c.ClientIP())
			if p, ok := PrincipalFrom(c); ok {
				event = event.Int64("user_id", p.ID).Str("role", string(p.Role))
			}
			if len(c.Errors) > 0 {
				event = event.Strs("errors", c.Errors.Errors())
			}
			event.Msg("request")
		}()

		c.Next()
	}
}
