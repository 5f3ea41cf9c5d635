// Package component defines lifecycle-managed infrastructure for forohub.
//
// The database and the HTTP server are components. cmd/forohub registers
// them in dependency order; the Registry starts them in that order, stops
// them in reverse, and aggregates their health for GET /health.
package component
