// Package endpoint provides the operational handlers forohub exposes next
// to its API: /health and /info.
package endpoint
