package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuthMetrics holds the instruments for login attempts and request outcomes.
// A nil *AuthMetrics records nothing.
type AuthMetrics struct {
	loginAttempts metric.Int64Counter
	requests      metric.Int64Counter
}

// NewAuthMetrics creates the auth instruments on meter.
func NewAuthMetrics(meter metric.Meter) (*AuthMetrics, error) {
	loginAttempts, err := meter.Int64Counter("auth.login.attempts",
		metric.WithDescription("Login attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.login.attempts counter: %w", err)
	}

	requests, err := meter.Int64Counter("auth.requests",
		metric.WithDescription("Requests by terminal authorization state"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.requests counter: %w", err)
	}

	return &AuthMetrics{loginAttempts: loginAttempts, requests: requests}, nil
}

// RecordLogin counts one login attempt with the given outcome.
func (m *AuthMetrics) RecordLogin(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordRequest counts one request reaching a terminal authorization state.
func (m *AuthMetrics) RecordRequest(ctx context.Context, state string) {
	if m == nil {
		return
	}
	m.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("state", state)))
}
