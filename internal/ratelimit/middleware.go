package ratelimit

import (
	"log/slog"
	"math"
	"strconv"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/errors"
	"github.com/gin-gonic/gin"
)

// IPRateLimitMiddleware limits one route group per client IP. Limiter
// faults let the request through.
func (rl *RateLimiter) IPRateLimitMiddleware(scope string, r Rate) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		result, err := rl.AllowIP(c.Request.Context(), scope, ip, r)
		if err != nil {
			slog.Error("Rate limit check failed", "scope", scope, "ip", ip, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			if rl.metrics != nil {
				rl.metrics.IncrementRateLimitIPBlock()
				rl.metrics.IncrementRateLimitEndpoint(scope)
			}

			retryAfter := strconv.Itoa(int(math.Ceil(result.RetryAfter.Seconds())))
			c.Header("Retry-After", retryAfter)
			errors.Abort(c, errors.NewRateLimitError(retryAfter+"s"))
			return
		}

		c.Next()
	}
}
