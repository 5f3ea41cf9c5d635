// Package observability wires OpenTelemetry tracing and metrics for forohub.
//
// Setup installs OTLP/HTTP exporters when telemetry is enabled; otherwise
// the global no-op providers stay in place and every span and instrument
// call is free.
//
//	shutdown, err := observability.Setup(ctx, cfg.Telemetry, observability.Service{Name: "forohub"}, log)
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "auth.authenticate")
//	defer span.End()
package observability
