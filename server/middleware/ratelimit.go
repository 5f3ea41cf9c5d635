package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/forohub/auth"
	apperrors "github.com/kbukum/forohub/errors"
	"github.com/kbukum/forohub/logger"
	"github.com/kbukum/forohub/observability"
	"github.com/kbukum/forohub/resilience"
)

// RateLimit throttles requests per client address using limiter. Rejected
// requests get 429 with Retry-After and never reach the handler. A nil
// limiter lets everything through.
func RateLimit(limiter *resilience.KeyedLimiter, metrics *observability.AuthMetrics, log *logger.Logger) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("ratelimit")

	return func(c *gin.Context) {
		ip := c.ClientIP()
		ok, wait := limiter.Allow(ip)
		if ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		metrics.RecordLogin(ctx, auth.OutcomeThrottled)
		log.WithContext(ctx).Warn("request throttled", logger.Fields(
			"client_ip", ip,
			"route", c.FullPath(),
			"retry_after", wait.String(),
		))

		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
		appErr := apperrors.RateLimited()
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
	}
}

func retryAfterSeconds(wait time.Duration) int {
	s := int(math.Ceil(wait.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
