// Package authctx carries the authenticated identity of a request in its
// context.Context.
//
// The authenticator middleware stores a snapshot once per request; handlers
// and the authorization gate read it back. A context without an identity is
// an anonymous request.
//
//	ctx = authctx.With(ctx, identity)
//	if id, ok := authctx.From(ctx); ok { ... }
package authctx

import (
	"context"

	"github.com/kbukum/forohub/auth"
)

// contextKey is an unexported type to prevent collisions with other packages.
type contextKey struct{}

// With returns a copy of ctx carrying a snapshot of identity. A nil identity
// leaves ctx anonymous.
func With(ctx context.Context, identity *auth.Identity) context.Context {
	if identity == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, identity.Clone())
}

// From returns the identity stored by With. The returned value is a copy.
func From(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*auth.Identity)
	if !ok || id == nil {
		return nil, false
	}
	return id.Clone(), true
}
