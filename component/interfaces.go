package component

import "context"

type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// severity orders statuses so the worst one can be picked.
var severity = map[HealthStatus]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}

// Health is one component's entry in GET /health.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is infrastructure with a lifecycle. Name must be unique
// within a Registry. Health must honor ctx; the registry bounds each call.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Overall is the worst status among healths, healthy when there are none.
func Overall(healths []Health) HealthStatus {
	worst := StatusHealthy
	for _, h := range healths {
		if severity[h.Status] > severity[worst] {
			worst = h.Status
		}
	}
	return worst
}
