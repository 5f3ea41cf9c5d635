package api

import (
	"net/http"
	"testing"

	"github.com/kbukum/forohub/auth"
	"github.com/kbukum/forohub/authz"
	"github.com/kbukum/forohub/users"
)

func TestPolicy_RouteTable(t *testing.T) {
	p := Policy()
	user := &auth.Identity{ID: 1, Login: "a@x.com", Enabled: true, Roles: []string{users.RoleUser}}
	admin := &auth.Identity{ID: 2, Login: "b@x.com", Enabled: true, Roles: []string{users.RoleUser, users.RoleAdmin}}

	tests := []struct {
		method   string
		path     string
		identity *auth.Identity
		want     error
	}{
		{http.MethodPost, "/login", nil, nil},
		{http.MethodPost, "/usuarios", nil, nil},
		{http.MethodGet, "/health", nil, nil},
		{http.MethodGet, "/info", nil, nil},
		{http.MethodGet, "/me", nil, authz.ErrUnauthorized},
		{http.MethodGet, "/me", user, nil},
		{http.MethodGet, "/usuarios/:id", nil, authz.ErrUnauthorized},
		{http.MethodGet, "/usuarios/:id", user, nil},
		{http.MethodPut, "/usuarios/:id/bloquear", user, authz.ErrForbidden},
		{http.MethodPut, "/usuarios/:id/bloquear", admin, nil},
		{http.MethodPut, "/usuarios/:id/desbloquear", user, authz.ErrForbidden},
		{http.MethodGet, "/login", nil, authz.ErrUnauthorized},
		{http.MethodDelete, "/usuarios/:id", nil, authz.ErrUnauthorized},
		{http.MethodGet, "/topicos/7", nil, authz.ErrUnauthorized},
	}
	for _, tc := range tests {
		if got := p.Check(tc.method, tc.path, tc.identity); got != tc.want {
			t.Errorf("%s %s: got %v, want %v", tc.method, tc.path, got, tc.want)
		}
	}
}
