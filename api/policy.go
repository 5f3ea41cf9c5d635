package api

import (
	"net/http"

	"github.com/kbukum/forohub/authz"
	"github.com/kbukum/forohub/users"
)

// Policy returns the route table. Patterns are Gin route templates, so
// they match c.FullPath(). First match wins.
func Policy() *authz.Policy {
	return authz.NewPolicy(
		authz.Rule{Method: http.MethodPost, Pattern: "/login", Requirement: authz.Public()},
		authz.Rule{Method: http.MethodPost, Pattern: "/usuarios", Requirement: authz.Public()},
		authz.Rule{Method: http.MethodGet, Pattern: "/health", Requirement: authz.Public()},
		authz.Rule{Method: http.MethodGet, Pattern: "/info", Requirement: authz.Public()},
		authz.Rule{Method: http.MethodGet, Pattern: "/me", Requirement: authz.Authenticated()},
		authz.Rule{Method: http.MethodGet, Pattern: "/usuarios/:id", Requirement: authz.Authenticated()},
		authz.Rule{Method: http.MethodPut, Pattern: "/usuarios/:id/bloquear", Requirement: authz.Role(users.RoleAdmin)},
		authz.Rule{Method: http.MethodPut, Pattern: "/usuarios/:id/desbloquear", Requirement: authz.Role(users.RoleAdmin)},
		authz.Rule{Pattern: "/**", Requirement: authz.Authenticated()},
	)
}
