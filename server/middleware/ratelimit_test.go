package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/forohub/resilience"
	"github.com/kbukum/forohub/server/middleware"
)

func limitedEngine(limiter *resilience.KeyedLimiter) *gin.Engine {
	engine := gin.New()
	engine.POST("/login", middleware.RateLimit(limiter, nil, nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return engine
}

func postFrom(engine *gin.Engine, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRateLimit_PerClient(t *testing.T) {
	engine := limitedEngine(resilience.NewKeyedLimiter(resilience.RateLimitConfig{PerMinute: 1, Burst: 1}))

	if w := postFrom(engine, "192.0.2.1:1000"); w.Code != http.StatusNoContent {
		t.Fatalf("first request: expected 204, got %d", w.Code)
	}
	w := postFrom(engine, "192.0.2.1:2000")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request from the same IP: expected 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Errorf("expected Retry-After 60, got %q", got)
	}
	if w := postFrom(engine, "192.0.2.2:1000"); w.Code != http.StatusNoContent {
		t.Errorf("another client must not be throttled, got %d", w.Code)
	}
}

func TestRateLimit_NilLimiter(t *testing.T) {
	engine := limitedEngine(nil)
	for i := 0; i < 20; i++ {
		if w := postFrom(engine, "192.0.2.1:1000"); w.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i+1, w.Code)
		}
	}
}
