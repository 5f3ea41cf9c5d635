package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/forohub/component"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// HealthResponse is the /health body.
type HealthResponse struct {
	Status     component.HealthStatus `json:"status"`
	Service    string                 `json:"service"`
	Timestamp  time.Time              `json:"timestamp"`
	Components []component.Health     `json:"components,omitempty"`
}

// Health reports the folded status of every component. Unhealthy answers
// 503 so load balancers drop the instance; degraded still answers 200.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Service:   serviceName,
			Timestamp: time.Now().UTC().Truncate(time.Second),
		}
		if checker != nil {
			resp.Components = checker(c.Request.Context())
		}
		resp.Status = component.Overall(resp.Components)

		code := http.StatusOK
		if resp.Status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, resp)
	}
}
