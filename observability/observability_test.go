package observability

import (
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s: unexpected data type %T", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				for _, kv := range dp.Attributes.ToSlice() {
					out[kv.Value.AsString()] += dp.Value
				}
			}
		}
	}
	return out
}

func TestAuthMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewAuthMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewAuthMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordLogin(ctx, "success")
	m.RecordLogin(ctx, "invalid_credentials")
	m.RecordLogin(ctx, "invalid_credentials")
	m.RecordRequest(ctx, "REJECTED")

	logins := collectSum(t, reader, "auth.login.attempts")
	if logins["success"] != 1 || logins["invalid_credentials"] != 2 {
		t.Errorf("unexpected login counts: %v", logins)
	}
	requests := collectSum(t, reader, "auth.requests")
	if requests["REJECTED"] != 1 {
		t.Errorf("unexpected request counts: %v", requests)
	}
}

func TestAuthMetrics_NilSafe(t *testing.T) {
	var m *AuthMetrics
	m.RecordLogin(context.Background(), "success")
	m.RecordRequest(context.Background(), "AUTHORIZED")
}

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{}, Service{Name: "svc", Version: "1.0.0"}, nil)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	cfg.SampleRate = 2
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for sample_rate > 1")
	}
}

func TestStartSpan_NoopProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test.op")
	defer span.End()
	span.SetAttributes(attribute.String("k", "v"))
	if ctx == nil {
		t.Fatal("expected context")
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "AlwaysOnSampler"},
		{2, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}
	for _, tc := range tests {
		desc := sampler(tc.rate).Description()
		if !strings.HasPrefix(desc, "ParentBased{root:"+tc.want) {
			t.Errorf("sampler(%v) = %s, want root %s", tc.rate, desc, tc.want)
		}
	}
}

func TestService_Resource(t *testing.T) {
	res, err := Service{Name: "forohub", Version: "1.2.3", Environment: "test"}.resource()
	if err != nil {
		t.Fatalf("resource: %v", err)
	}
	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs["service.name"] != "forohub" || attrs["service.version"] != "1.2.3" || attrs["deployment.environment"] != "test" {
		t.Errorf("unexpected resource attributes %v", attrs)
	}
}
