// Package middleware holds the HTTP middleware forohub's server runs.
//
// Transport concerns (request ids, panic recovery, CORS, body limits and
// request logging) are plain net/http Middleware applied around the whole
// handler. The authentication, authorization and login throttle gates are
// gin handlers because they need the matched route template.
package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain composes mws so that mws[0] sees the request first.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for _, mw := range slices.Backward(mws) {
			h = mw(h)
		}
		return h
	}
}

// GinWrap runs mw inside a gin chain. Whatever request mw hands on
// (with a new context, say) becomes c.Request for later handlers.
func GinWrap(mw Middleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
	}
}
