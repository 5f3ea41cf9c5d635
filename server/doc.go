// Package server provides forohub's HTTP server: Gin mounted on a root
// ServeMux with h2c support, wrapped in the transport middleware from
// server/middleware, and managed as a component.
//
// The middleware order, outermost first, is Recovery, RequestID, CORS,
// BodySizeLimit and RequestLogger. Authentication and authorization run
// inside Gin, registered by the api package.
package server
