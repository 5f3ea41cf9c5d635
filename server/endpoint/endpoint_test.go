package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/forohub/component"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h gin.HandlerFunc, dst any) int {
	t.Helper()
	engine := gin.New()
	engine.GET("/", h)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return w.Code
}

func TestHealth_Table(t *testing.T) {
	tests := []struct {
		name       string
		components []component.Health
		wantCode   int
		wantStatus component.HealthStatus
	}{
		{"no components", nil, http.StatusOK, component.StatusHealthy},
		{"all healthy", []component.Health{
			{Name: "database", Status: component.StatusHealthy},
			{Name: "http-server", Status: component.StatusHealthy},
		}, http.StatusOK, component.StatusHealthy},
		{"degraded", []component.Health{
			{Name: "database", Status: component.StatusDegraded},
		}, http.StatusOK, component.StatusDegraded},
		{"unhealthy", []component.Health{
			{Name: "database", Status: component.StatusUnhealthy, Message: "ping failed"},
			{Name: "http-server", Status: component.StatusHealthy},
		}, http.StatusServiceUnavailable, component.StatusUnhealthy},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checker := func(context.Context) []component.Health { return tc.components }
			var resp HealthResponse
			code := serve(t, Health("forohub", checker), &resp)

			if code != tc.wantCode {
				t.Errorf("expected %d, got %d", tc.wantCode, code)
			}
			if resp.Status != tc.wantStatus {
				t.Errorf("expected %s, got %s", tc.wantStatus, resp.Status)
			}
			if resp.Service != "forohub" || len(resp.Components) != len(tc.components) {
				t.Errorf("unexpected body %+v", resp)
			}
		})
	}
}

func TestInfo(t *testing.T) {
	started := time.Now().Add(-90 * time.Second)
	var resp InfoResponse
	if code := serve(t, Info("forohub", started), &resp); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp.Service != "forohub" || resp.Build.GoVersion == "" {
		t.Errorf("unexpected body %+v", resp)
	}
	uptime, err := time.ParseDuration(resp.Uptime)
	if err != nil {
		t.Fatalf("uptime %q: %v", resp.Uptime, err)
	}
	if uptime < 90*time.Second {
		t.Errorf("expected at least 90s uptime, got %v", uptime)
	}
}
